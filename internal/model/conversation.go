package model

import "time"

type Conversation struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	UserID          string     `gorm:"column:user_id;size:36;uniqueIndex:uk_conv_user_vendor_car;index" json:"userId"`
	VendorID        string     `gorm:"column:vendor_id;size:36;uniqueIndex:uk_conv_user_vendor_car" json:"vendorId"`
	CarID           string     `gorm:"column:car_id;size:36;uniqueIndex:uk_conv_user_vendor_car" json:"carId"`
	UserLastReadAt  *time.Time `gorm:"column:user_last_read_at" json:"userLastReadAt"`
	AdminLastReadAt *time.Time `gorm:"column:admin_last_read_at" json:"adminLastReadAt"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}
