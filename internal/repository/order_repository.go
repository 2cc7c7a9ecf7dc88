package repository

import (
	"context"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdminOrderRow is one order joined with buyer/car/vendor context for the
// admin order listing.
type AdminOrderRow struct {
	model.Order
	UserFirstName string `json:"userFirstName"`
	UserLastName  string `json:"userLastName"`
	UserEmail     string `json:"userEmail"`
	CarBrand      string `json:"carBrand"`
	CarModel      string `json:"carModel"`
	CarYear       int    `json:"carYear"`
	VendorName    string `json:"vendorName"`
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error)
	FindPendingByUserCar(ctx context.Context, userID, carID string) (*model.Order, error)
	FindCurrentByUser(ctx context.Context, userID string) (*model.Order, error)
	// ConfirmIfPending transitions pending->confirmed in one transaction and
	// reports affected rows, so a raced call observes 0 instead of a
	// read-then-write window.
	ConfirmIfPending(ctx context.Context, orderID, userID string) (int64, error)
	// RefundIfPending transitions pending->cancelled with
	// payment_status=refunded under the same conditional-update contract.
	RefundIfPending(ctx context.Context, orderID, userID string) (int64, error)
	ListAllForAdmin(ctx context.Context) ([]AdminOrderRow, error)
	ListPendingIDsWithoutCodes(ctx context.Context) ([]string, error)
	CountPending(ctx context.Context) (int64, error)
	CountConfirmedToday(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepository) FindByIDForUser(ctx context.Context, orderID, userID string) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindPendingByUserCar(ctx context.Context, userID, carID string) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND car_id = ? AND status = ?", userID, carID, model.OrderStatusPending).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) FindCurrentByUser(ctx context.Context, userID string) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.OrderStatusPending).
		Order("created_at DESC").
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) ConfirmIfPending(ctx context.Context, orderID, userID string) (int64, error) {
	return r.transitionIfPending(ctx, orderID, userID, map[string]interface{}{
		"status": model.OrderStatusConfirmed,
	})
}

func (r *orderRepository) RefundIfPending(ctx context.Context, orderID, userID string) (int64, error) {
	return r.transitionIfPending(ctx, orderID, userID, map[string]interface{}{
		"status":         model.OrderStatusCancelled,
		"payment_status": model.PaymentStatusRefunded,
	})
}

// transitionIfPending holds a row lock across the pending check and the
// update so two racing terminal transitions cannot both succeed, even across
// server instances.
func (r *orderRepository) transitionIfPending(ctx context.Context, orderID, userID string, updates map[string]interface{}) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o model.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND user_id = ? AND status = ?", orderID, userID, model.OrderStatusPending).
			First(&o).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		res := tx.Model(&model.Order{}).
			Where("id = ? AND user_id = ? AND status = ?", orderID, userID, model.OrderStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *orderRepository) ListAllForAdmin(ctx context.Context) ([]AdminOrderRow, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []AdminOrderRow
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select(`orders.*,
			users.first_name AS user_first_name,
			users.last_name AS user_last_name,
			users.email AS user_email,
			cars.brand AS car_brand,
			cars.model AS car_model,
			cars.year AS car_year,
			vendors.display_name AS vendor_name`).
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN cars ON cars.id = orders.car_id").
		Joins("JOIN vendors ON vendors.id = orders.vendor_id").
		Order("orders.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepository) ListPendingIDsWithoutCodes(ctx context.Context) ([]string, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Select("orders.id").
		Joins("LEFT JOIN order_verification_codes ON order_verification_codes.order_id = orders.id").
		Where("orders.status = ? AND order_verification_codes.id IS NULL", model.OrderStatusPending).
		Pluck("orders.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *orderRepository) CountPending(ctx context.Context) (int64, error) {
	return r.CountByStatus(ctx, model.OrderStatusPending)
}

func (r *orderRepository) CountConfirmedToday(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	today := time.Now().Truncate(24 * time.Hour)
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status = ? AND created_at >= ?", model.OrderStatusConfirmed, today).
		Count(&total).Error
	return total, err
}

func (r *orderRepository) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("status = ?", status).
		Count(&total).Error
	return total, err
}

func (r *orderRepository) CountTotal(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error
	return total, err
}

func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
