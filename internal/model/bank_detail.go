package model

import (
	"time"
)

// BankDetail 店主收款信息表，每个店主一行
type BankDetail struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"owner_id"`
	AccountHolder string    `gorm:"type:varchar(128);not null" json:"account_holder"`
	AccountNumber string    `gorm:"type:varchar(32);not null" json:"account_number"`
	IFSC          string    `gorm:"type:varchar(16);not null" json:"ifsc"`
	UPIID         string    `gorm:"type:varchar(64)" json:"upi_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (BankDetail) TableName() string {
	return "bank_detail"
}
