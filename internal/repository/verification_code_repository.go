package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDBNotReady = errors.New("database not initialized")

// AdminCodeRow is one active code set joined with its order context, as shown
// on the operator dashboard.
type AdminCodeRow struct {
	OrderID        string            `json:"orderId"`
	Code1          string            `json:"code1"`
	Code2          string            `json:"code2"`
	Code3          string            `json:"code3"`
	ResumeStep     int               `json:"resumeStep"`
	OrderStatus    model.OrderStatus `json:"orderStatus"`
	OrderCreatedAt time.Time         `json:"orderCreatedAt"`
	UserFirstName  string            `json:"userFirstName"`
	UserLastName   string            `json:"userLastName"`
	UserEmail      string            `json:"userEmail"`
	CarBrand       string            `json:"carBrand"`
	CarModel       string            `json:"carModel"`
	CarYear        int               `json:"carYear"`
}

type VerificationCodeRepository interface {
	// EnsureActive returns the active set for the order unchanged, or
	// (re)creates one seeded with code1. Atomic so two concurrent callers
	// cannot end up with differing active sets.
	EnsureActive(ctx context.Context, orderID, code1 string) (*model.VerificationCodeSet, error)
	Find(ctx context.Context, orderID string) (*model.VerificationCodeSet, error)
	// MarkStepVerified flips one step flag and advances resume_step
	// monotonically to step+1.
	MarkStepVerified(ctx context.Context, orderID string, step int) error
	// SetCode2IfEmpty writes code2 only when it has never been generated.
	// Returns affected rows so callers can tell whether this write won.
	SetCode2IfEmpty(ctx context.Context, orderID, code string) (int64, error)
	SetCode3IfEmpty(ctx context.Context, orderID, code string) (int64, error)
	// Reset reactivates the set with a fresh code1, clearing codes and flags.
	Reset(ctx context.Context, orderID, code1 string) (*model.VerificationCodeSet, error)
	Deactivate(ctx context.Context, orderID string) error
	ListActiveForPendingOrders(ctx context.Context) ([]AdminCodeRow, error)
}

type verificationCodeRepository struct {
	db *gorm.DB
}

func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &verificationCodeRepository{db: db}
}

func (r *verificationCodeRepository) EnsureActive(ctx context.Context, orderID, code1 string) (*model.VerificationCodeSet, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var set model.VerificationCodeSet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&set).Error
		if err == nil {
			if set.IsActive {
				return nil
			}
			return resetLocked(tx, &set, code1)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		set = model.VerificationCodeSet{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			Code1:      code1,
			ResumeStep: 1,
			IsActive:   true,
		}
		return tx.Create(&set).Error
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// resetLocked wipes a locked row back to a fresh step-1 state.
func resetLocked(tx *gorm.DB, set *model.VerificationCodeSet, code1 string) error {
	set.Code1 = code1
	set.Code2 = ""
	set.Code3 = ""
	set.Step1Verified = false
	set.Step2Verified = false
	set.Step3Verified = false
	set.Step4Verified = false
	set.ResumeStep = 1
	set.IsActive = true
	return tx.Model(&model.VerificationCodeSet{}).
		Where("id = ?", set.ID).
		Updates(map[string]interface{}{
			"code1":          code1,
			"code2":          "",
			"code3":          "",
			"step1_verified": false,
			"step2_verified": false,
			"step3_verified": false,
			"step4_verified": false,
			"resume_step":    1,
			"is_active":      true,
		}).Error
}

func (r *verificationCodeRepository) Find(ctx context.Context, orderID string) (*model.VerificationCodeSet, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var set model.VerificationCodeSet
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&set).Error; err != nil {
		return nil, err
	}
	return &set, nil
}

var stepColumns = map[int]string{
	1: "step1_verified",
	2: "step2_verified",
	3: "step3_verified",
	4: "step4_verified",
}

func (r *verificationCodeRepository) MarkStepVerified(ctx context.Context, orderID string, step int) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	col, ok := stepColumns[step]
	if !ok {
		return errors.New("invalid step number")
	}
	return r.db.WithContext(ctx).
		Model(&model.VerificationCodeSet{}).
		Where("order_id = ? AND is_active = ?", orderID, true).
		Updates(map[string]interface{}{
			col:           true,
			"resume_step": gorm.Expr("GREATEST(resume_step, ?)", step+1),
		}).Error
}

func (r *verificationCodeRepository) SetCode2IfEmpty(ctx context.Context, orderID, code string) (int64, error) {
	return r.setCodeIfEmpty(ctx, "code2", orderID, code)
}

func (r *verificationCodeRepository) SetCode3IfEmpty(ctx context.Context, orderID, code string) (int64, error) {
	return r.setCodeIfEmpty(ctx, "code3", orderID, code)
}

func (r *verificationCodeRepository) setCodeIfEmpty(ctx context.Context, column, orderID, code string) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.VerificationCodeSet{}).
		Where("order_id = ? AND is_active = ? AND "+column+" = ''", orderID, true).
		Update(column, code)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *verificationCodeRepository) Reset(ctx context.Context, orderID, code1 string) (*model.VerificationCodeSet, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var set model.VerificationCodeSet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_id = ?", orderID).
			First(&set).Error
		if err == nil {
			return resetLocked(tx, &set, code1)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		set = model.VerificationCodeSet{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			Code1:      code1,
			ResumeStep: 1,
			IsActive:   true,
		}
		return tx.Create(&set).Error
	})
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *verificationCodeRepository) Deactivate(ctx context.Context, orderID string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.VerificationCodeSet{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"is_active":   false,
			"resume_step": 1,
		}).Error
}

func (r *verificationCodeRepository) ListActiveForPendingOrders(ctx context.Context) ([]AdminCodeRow, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []AdminCodeRow
	err := r.db.WithContext(ctx).
		Model(&model.VerificationCodeSet{}).
		Select(`order_verification_codes.order_id,
			order_verification_codes.code1,
			order_verification_codes.code2,
			order_verification_codes.code3,
			order_verification_codes.resume_step,
			orders.status AS order_status,
			orders.created_at AS order_created_at,
			users.first_name AS user_first_name,
			users.last_name AS user_last_name,
			users.email AS user_email,
			cars.brand AS car_brand,
			cars.model AS car_model,
			cars.year AS car_year`).
		Joins("JOIN orders ON orders.id = order_verification_codes.order_id").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN cars ON cars.id = orders.car_id").
		Where("order_verification_codes.is_active = ? AND orders.status = ?", true, model.OrderStatusPending).
		Order("orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
