package model

import (
	"time"
)

// PaymentRecord 支付捕获流水表
// 每一笔验签并 capture 成功的支付记一行，是对账的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 每笔流水必须关联订单号 —— 便于对账
type PaymentRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymentID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"payment_id"` // 网关支付ID
	GatewayOrderID string    `gorm:"type:varchar(64);index;not null" json:"gateway_order_id"`
	OrderNo        string    `gorm:"type:varchar(64);index" json:"order_no"` // 本地订单号，未匹配到时为空
	Amount         int64     `gorm:"not null" json:"amount"`                 // capture 金额（最小单位，派萨）
	Currency       string    `gorm:"type:varchar(8);not null" json:"currency"`
	GatewayStatus  string    `gorm:"type:varchar(32);not null" json:"gateway_status"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (PaymentRecord) TableName() string {
	return "payment_record"
}
