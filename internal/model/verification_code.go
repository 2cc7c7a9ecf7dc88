package model

import "time"

// VerificationCodeSet holds the three server-generated refund codes for one
// order. Code2 exists only after step 3 succeeds, code3 only after step 4.
// At most one row per order; a terminal order transition deactivates it
// instead of deleting it.
type VerificationCodeSet struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	OrderID       string    `gorm:"column:order_id;size:36;not null;uniqueIndex:uk_codes_order" json:"orderId"`
	Code1         string    `gorm:"column:code1;size:8;not null" json:"code1"`
	Code2         string    `gorm:"column:code2;size:8;not null;default:''" json:"code2"`
	Code3         string    `gorm:"column:code3;size:8;not null;default:''" json:"code3"`
	Step1Verified bool      `gorm:"column:step1_verified;not null;default:false" json:"step1Verified"`
	Step2Verified bool      `gorm:"column:step2_verified;not null;default:false" json:"step2Verified"`
	Step3Verified bool      `gorm:"column:step3_verified;not null;default:false" json:"step3Verified"`
	Step4Verified bool      `gorm:"column:step4_verified;not null;default:false" json:"step4Verified"`
	ResumeStep    int       `gorm:"column:resume_step;not null;default:1" json:"resumeStep"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (VerificationCodeSet) TableName() string {
	return "order_verification_codes"
}
