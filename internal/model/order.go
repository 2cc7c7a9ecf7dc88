package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order status moves away from pending exactly once (confirmed or cancelled)
// and never back. Orders are never hard-deleted.
type Order struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	UserID          string        `gorm:"column:user_id;size:36;index;not null" json:"userId"`
	CarID           string        `gorm:"column:car_id;size:36;index;not null" json:"carId"`
	VendorID        string        `gorm:"column:vendor_id;size:36;index;not null" json:"vendorId"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Currency        string        `gorm:"size:3;not null;default:EUR" json:"currency"`
	Country         string        `gorm:"size:80" json:"country"`
	City            string        `gorm:"size:120" json:"city"`
	Address         string        `gorm:"size:255" json:"address"`
	PostalCode      string        `gorm:"column:postal_code;size:16" json:"postalCode"`
	PaymentMethod   string        `gorm:"column:payment_method;size:64" json:"paymentMethod"`
	PaymentProofURL *string       `gorm:"column:payment_proof_url;size:512" json:"paymentProofUrl"`
	PaymentStatus   PaymentStatus `gorm:"column:payment_status;size:32;not null;default:pending" json:"paymentStatus"`
	Status          OrderStatus   `gorm:"size:32;not null;default:pending;index" json:"status"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}
