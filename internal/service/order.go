package service

import (
	"context"
	"errors"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAlreadyReserved = errors.New("a pending order already exists for this car")

// ReserveInput is the buyer's shipping and payment context captured at
// reservation time.
type ReserveInput struct {
	CarID           string
	Country         string
	City            string
	Address         string
	PostalCode      string
	PaymentMethod   string
	PaymentProofURL *string
}

type OrderService interface {
	Reserve(ctx context.Context, userID string, in ReserveInput) (*model.Order, error)
	// Confirm transitions pending->confirmed exactly once; a raced or
	// already-processed order reports ErrOrderUnavailable.
	Confirm(ctx context.Context, orderID, userID string) error
	Current(ctx context.Context, userID string) (*model.Order, error)
	ListForAdmin(ctx context.Context) ([]repository.AdminOrderRow, error)
}

type orderService struct {
	orders repository.OrderRepository
	cars   repository.CarRepository
	codes  VerificationCodeStore
}

func NewOrderService(orders repository.OrderRepository, cars repository.CarRepository, codes VerificationCodeStore) OrderService {
	return &orderService{orders: orders, cars: cars, codes: codes}
}

func (s *orderService) Reserve(ctx context.Context, userID string, in ReserveInput) (*model.Order, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if in.CarID == "" || in.PaymentMethod == "" {
		return nil, ErrInvalidRequest
	}
	car, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing, err := s.orders.FindPendingByUserCar(ctx, userID, car.ID); err == nil && existing != nil {
		return existing, ErrAlreadyReserved
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	o := &model.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		CarID:           car.ID,
		VendorID:        car.VendorID,
		Amount:          car.Price,
		Currency:        "EUR",
		Country:         in.Country,
		City:            in.City,
		Address:         in.Address,
		PostalCode:      in.PostalCode,
		PaymentMethod:   in.PaymentMethod,
		PaymentProofURL: in.PaymentProofURL,
		PaymentStatus:   model.PaymentStatusPending,
		Status:          model.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}
	if _, err := s.codes.EnsureCodes(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) Confirm(ctx context.Context, orderID, userID string) error {
	if userID == "" || orderID == "" {
		return ErrInvalidRequest
	}
	affected, err := s.orders.ConfirmIfPending(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderUnavailable
	}
	// A confirmed order can never resume the refund flow.
	return s.codes.Deactivate(ctx, orderID)
}

func (s *orderService) Current(ctx context.Context, userID string) (*model.Order, error) {
	o, err := s.orders.FindCurrentByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) ListForAdmin(ctx context.Context) ([]repository.AdminOrderRow, error) {
	return s.orders.ListAllForAdmin(ctx)
}
