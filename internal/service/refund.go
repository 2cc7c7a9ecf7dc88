package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"gorm.io/gorm"
)

var (
	codePattern  = regexp.MustCompile(`^\d{4,8}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Step1Evidence is the identity and payment context submitted on the first
// refund step. Files are captured upstream; this core only cares that a
// payment screenshot was attached.
type Step1Evidence struct {
	FullName       string
	Phone          string
	Email          string
	OrderDate      string
	AmountPaid     string
	PaymentMethod  string
	HasPaymentShot bool
}

// Step2Evidence is the identity-document and bank-detail capture of step 2.
type Step2Evidence struct {
	HasIDFront    bool
	HasIDBack     bool
	IBAN          string
	AccountHolder string
}

// RefundState is what the refund page renders when a user resumes the flow.
type RefundState struct {
	Order *model.Order `json:"order"`
	State *CodeState   `json:"state"`
}

// RefundService drives the five-step refund flow. Every step re-fetches the
// order and requires status=pending, so a confirm that commits mid-flow
// invalidates all further submissions.
type RefundService interface {
	State(ctx context.Context, orderID, userID string) (*RefundState, error)
	SubmitStep1(ctx context.Context, orderID, userID string, ev Step1Evidence) error
	SubmitStep2(ctx context.Context, orderID, userID string, ev Step2Evidence) error
	SubmitStep3(ctx context.Context, orderID, userID, code string) error
	SubmitStep4(ctx context.Context, orderID, userID, code string) error
	// Finalize re-checks all four step flags and all three codes, returning
	// every failing precondition at once. A nil, nil return means the
	// refund committed.
	Finalize(ctx context.Context, orderID, userID, code1, code2, code3 string) ([]string, error)
}

type refundService struct {
	orders repository.OrderRepository
	codes  VerificationCodeStore
}

func NewRefundService(orders repository.OrderRepository, codes VerificationCodeStore) RefundService {
	return &refundService{orders: orders, codes: codes}
}

func (s *refundService) State(ctx context.Context, orderID, userID string) (*RefundState, error) {
	order, err := s.pendingOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.codes.EnsureCodes(ctx, orderID); err != nil {
		return nil, err
	}
	state, err := s.codes.GetState(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &RefundState{Order: order, State: state}, nil
}

func (s *refundService) SubmitStep1(ctx context.Context, orderID, userID string, ev Step1Evidence) error {
	if _, err := s.pendingOrder(ctx, orderID, userID); err != nil {
		return err
	}
	if ev.FullName == "" || ev.Phone == "" || ev.Email == "" ||
		ev.OrderDate == "" || ev.AmountPaid == "" || ev.PaymentMethod == "" ||
		!ev.HasPaymentShot {
		return ErrInvalidRequest
	}
	if !emailPattern.MatchString(ev.Email) {
		return ErrInvalidRequest
	}
	if _, err := s.codes.EnsureCodes(ctx, orderID); err != nil {
		return err
	}
	return s.codes.MarkStepVerified(ctx, orderID, 1)
}

func (s *refundService) SubmitStep2(ctx context.Context, orderID, userID string, ev Step2Evidence) error {
	if _, err := s.pendingOrder(ctx, orderID, userID); err != nil {
		return err
	}
	if !ev.HasIDFront || !ev.HasIDBack || ev.IBAN == "" || ev.AccountHolder == "" {
		return ErrInvalidRequest
	}
	if _, err := s.codes.EnsureCodes(ctx, orderID); err != nil {
		return err
	}
	state, err := s.codes.GetState(ctx, orderID)
	if err != nil {
		return err
	}
	if !state.Step1Verified {
		return ErrInvalidState
	}
	return s.codes.MarkStepVerified(ctx, orderID, 2)
}

func (s *refundService) SubmitStep3(ctx context.Context, orderID, userID, code string) error {
	if _, err := s.pendingOrder(ctx, orderID, userID); err != nil {
		return err
	}
	if !codePattern.MatchString(code) {
		return ErrInvalidRequest
	}
	if _, err := s.codes.EnsureCodes(ctx, orderID); err != nil {
		return err
	}
	return s.codes.AdvanceStep3(ctx, orderID, code)
}

func (s *refundService) SubmitStep4(ctx context.Context, orderID, userID, code string) error {
	if _, err := s.pendingOrder(ctx, orderID, userID); err != nil {
		return err
	}
	if !codePattern.MatchString(code) {
		return ErrInvalidRequest
	}
	return s.codes.AdvanceStep4(ctx, orderID, code)
}

func (s *refundService) Finalize(ctx context.Context, orderID, userID, code1, code2, code3 string) ([]string, error) {
	if _, err := s.pendingOrder(ctx, orderID, userID); err != nil {
		return nil, err
	}
	if _, err := s.codes.EnsureCodes(ctx, orderID); err != nil {
		return nil, err
	}
	state, err := s.codes.GetState(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var failures []string
	if !state.Step1Verified {
		failures = append(failures, "Step 1 not validated.")
	}
	if !state.Step2Verified {
		failures = append(failures, "Step 2 not validated.")
	}
	if !state.Step3Verified {
		failures = append(failures, "Step 3 not validated.")
	}
	if !state.Step4Verified {
		failures = append(failures, "Step 4 not validated.")
	}

	if len(failures) == 0 {
		// The commit re-checks all three codes against the stored set,
		// not just the two that steps 3 and 4 validated individually.
		check, err := s.codes.VerifyFinal(ctx, orderID, code1, code2, code3)
		if err != nil {
			return nil, err
		}
		if !check.Exists {
			failures = append(failures, "Verification codes unavailable for this order. Contact the administrator.")
		} else {
			if !check.Code1OK {
				failures = append(failures, "Code #1 incorrect.")
			}
			if !check.Code2OK {
				failures = append(failures, "Code #2 incorrect.")
			}
			if !check.Code3OK {
				failures = append(failures, "Code #3 incorrect.")
			}
		}
	}

	if len(failures) > 0 {
		return failures, nil
	}

	affected, err := s.orders.RefundIfPending(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrOrderUnavailable
	}
	return nil, s.codes.Deactivate(ctx, orderID)
}

func (s *refundService) pendingOrder(ctx context.Context, orderID, userID string) (*model.Order, error) {
	if orderID == "" || userID == "" {
		return nil, ErrInvalidRequest
	}
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderUnavailable
		}
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, ErrOrderUnavailable
	}
	return order, nil
}
