package service

import (
	"context"
	"errors"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"gorm.io/gorm"
)

// CodeState is the refund progress reported to clients: codes generated so
// far, the four step flags and the advisory resume position. Absence of an
// active set is a state, not an error.
type CodeState struct {
	Exists        bool   `json:"exists"`
	Code1         string `json:"code1"`
	Code2         string `json:"code2"`
	Code3         string `json:"code3"`
	Step1Verified bool   `json:"step1Verified"`
	Step2Verified bool   `json:"step2Verified"`
	Step3Verified bool   `json:"step3Verified"`
	Step4Verified bool   `json:"step4Verified"`
	ResumeStep    int    `json:"resumeStep"`
}

// FinalCheck is the per-code result of the final three-way recheck.
type FinalCheck struct {
	Exists  bool
	Code1OK bool
	Code2OK bool
	Code3OK bool
}

func (c FinalCheck) AllOK() bool {
	return c.Exists && c.Code1OK && c.Code2OK && c.Code3OK
}

type VerificationCodeStore interface {
	// EnsureCodes is idempotent while a set is active: it returns the
	// existing active set unchanged, and otherwise (re)creates one with a
	// fresh code1.
	EnsureCodes(ctx context.Context, orderID string) (*model.VerificationCodeSet, error)
	GetState(ctx context.Context, orderID string) (*CodeState, error)
	MarkStepVerified(ctx context.Context, orderID string, step int) error
	AdvanceStep3(ctx context.Context, orderID, submittedCode1 string) error
	AdvanceStep4(ctx context.Context, orderID, submittedCode2 string) error
	VerifyFinal(ctx context.Context, orderID, code1, code2, code3 string) (*FinalCheck, error)
	Deactivate(ctx context.Context, orderID string) error
	// Regenerate resets the set to a fresh code1 regardless of its current
	// state (admin operation).
	Regenerate(ctx context.Context, orderID string) (*model.VerificationCodeSet, error)
	EnsureForPendingOrders(ctx context.Context) (int, error)
	ListActive(ctx context.Context) ([]repository.AdminCodeRow, error)
}

type verificationCodeStore struct {
	codes  repository.VerificationCodeRepository
	orders repository.OrderRepository
}

func NewVerificationCodeStore(codes repository.VerificationCodeRepository, orders repository.OrderRepository) VerificationCodeStore {
	return &verificationCodeStore{codes: codes, orders: orders}
}

func (s *verificationCodeStore) EnsureCodes(ctx context.Context, orderID string) (*model.VerificationCodeSet, error) {
	code1, err := generateCode()
	if err != nil {
		return nil, err
	}
	return s.codes.EnsureActive(ctx, orderID, code1)
}

func (s *verificationCodeStore) GetState(ctx context.Context, orderID string) (*CodeState, error) {
	set, err := s.codes.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CodeState{Exists: false, ResumeStep: 1}, nil
		}
		return nil, err
	}
	if !set.IsActive {
		return &CodeState{Exists: false, ResumeStep: 1}, nil
	}
	resume := set.ResumeStep
	if resume < 1 {
		resume = 1
	}
	if resume > 5 {
		resume = 5
	}
	return &CodeState{
		Exists:        true,
		Code1:         set.Code1,
		Code2:         set.Code2,
		Code3:         set.Code3,
		Step1Verified: set.Step1Verified,
		Step2Verified: set.Step2Verified,
		Step3Verified: set.Step3Verified,
		Step4Verified: set.Step4Verified,
		ResumeStep:    resume,
	}, nil
}

func (s *verificationCodeStore) MarkStepVerified(ctx context.Context, orderID string, step int) error {
	return s.codes.MarkStepVerified(ctx, orderID, step)
}

func (s *verificationCodeStore) AdvanceStep3(ctx context.Context, orderID, submittedCode1 string) error {
	set, err := s.activeSet(ctx, orderID)
	if err != nil {
		return err
	}
	if !set.Step2Verified {
		return ErrInvalidState
	}
	if set.Code1 != submittedCode1 {
		return ErrInvalidCode
	}
	if set.Code2 == "" {
		code2, err := generateDistinctCode(set.Code1)
		if err != nil {
			return err
		}
		// Zero affected rows means a concurrent caller generated it
		// first; theirs stands.
		if _, err := s.codes.SetCode2IfEmpty(ctx, orderID, code2); err != nil {
			return err
		}
	}
	return s.codes.MarkStepVerified(ctx, orderID, 3)
}

func (s *verificationCodeStore) AdvanceStep4(ctx context.Context, orderID, submittedCode2 string) error {
	set, err := s.activeSet(ctx, orderID)
	if err != nil {
		return err
	}
	if !set.Step3Verified {
		return ErrInvalidState
	}
	if set.Code2 == "" {
		return ErrCodeNotReady
	}
	if set.Code2 != submittedCode2 {
		return ErrInvalidCode
	}
	if set.Code3 == "" {
		code3, err := generateDistinctCode(set.Code1, set.Code2)
		if err != nil {
			return err
		}
		if _, err := s.codes.SetCode3IfEmpty(ctx, orderID, code3); err != nil {
			return err
		}
	}
	return s.codes.MarkStepVerified(ctx, orderID, 4)
}

func (s *verificationCodeStore) VerifyFinal(ctx context.Context, orderID, code1, code2, code3 string) (*FinalCheck, error) {
	set, err := s.activeSet(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &FinalCheck{Exists: false}, nil
		}
		return nil, err
	}
	return &FinalCheck{
		Exists:  true,
		Code1OK: set.Code1 == code1,
		Code2OK: set.Code2 == code2,
		Code3OK: set.Code3 == code3,
	}, nil
}

func (s *verificationCodeStore) Deactivate(ctx context.Context, orderID string) error {
	return s.codes.Deactivate(ctx, orderID)
}

func (s *verificationCodeStore) Regenerate(ctx context.Context, orderID string) (*model.VerificationCodeSet, error) {
	code1, err := generateCode()
	if err != nil {
		return nil, err
	}
	return s.codes.Reset(ctx, orderID, code1)
}

// EnsureForPendingOrders backfills code sets for pending orders that lack
// one, covering orders created before this mechanism existed.
func (s *verificationCodeStore) EnsureForPendingOrders(ctx context.Context) (int, error) {
	ids, err := s.orders.ListPendingIDsWithoutCodes(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := s.EnsureCodes(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (s *verificationCodeStore) ListActive(ctx context.Context) ([]repository.AdminCodeRow, error) {
	return s.codes.ListActiveForPendingOrders(ctx)
}

func (s *verificationCodeStore) activeSet(ctx context.Context, orderID string) (*model.VerificationCodeSet, error) {
	set, err := s.codes.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !set.IsActive {
		return nil, ErrNotFound
	}
	return set, nil
}
