package model

import "time"

type Vendor struct {
	ID          string    `gorm:"primaryKey;size:36"`
	DisplayName string    `gorm:"column:display_name;size:120;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Vendor) TableName() string {
	return "vendors"
}
