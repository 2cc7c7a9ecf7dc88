package model

import "time"

type Car struct {
	ID        string    `gorm:"primaryKey;size:36"`
	VendorID  string    `gorm:"column:vendor_id;size:36;index;not null"`
	Brand     string    `gorm:"size:120;not null"`
	Model     string    `gorm:"size:120;not null"`
	Year      int       `gorm:"not null"`
	Price     int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Car) TableName() string {
	return "cars"
}
