package model

import (
	"time"
)

const (
	SmsStatusPending = "PENDING"
	SmsStatusSent    = "SENT"
	SmsStatusFailed  = "FAILED"
)

// SmsMessage 短信发送队列表
// 下单成功后写入一条待发短信，后台任务投递到短信网关。
// 发送失败只记录不回滚订单，重试超限后标记 FAILED
type SmsMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageNo  string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"message_no"`
	OrderNo    string    `gorm:"type:varchar(64);index;not null" json:"order_no"`
	Phone      string    `gorm:"type:varchar(32);not null" json:"phone"`
	Body       string    `gorm:"type:varchar(1024);not null" json:"body"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	SID        string    `gorm:"column:sid;type:varchar(64)" json:"sid"` // 网关返回的消息ID
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SmsMessage) TableName() string {
	return "sms_message"
}
