package model

import (
	"encoding/json"
	"time"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentMethodCOD = "COD" // 到店现金
	PaymentMethodUPI = "UPI" // 走支付网关，收平台费
)

// ValidStatuses 订单状态集合
// 店主可以在这三个状态之间手动调整，支付回流只做 pending -> paid
var ValidStatuses = map[string]bool{
	OrderStatusPending:   true,
	OrderStatusPaid:      true,
	OrderStatusCancelled: true,
}

func IsValidStatus(status string) bool {
	return ValidStatuses[status]
}

func IsValidPaymentMethod(method string) bool {
	return method == PaymentMethodCOD || method == PaymentMethodUPI
}

// OrderItem 订单行，序列化成 JSON 存在订单的 items 字段里
type OrderItem struct {
	MenuItemID  int64   `json:"menu_item_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"` // 单价（卢比）
	Quantity    int     `json:"quantity"`
}

// Order 餐厅订单表
// 下单后只有 status 一个字段会被修改（店主操作或支付回流），订单不删除
type Order struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo       string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_no"`
	OwnerID       string     `gorm:"type:varchar(64);index;not null" json:"owner_id"` // 所属餐厅（店主）
	CustomerName  string     `gorm:"type:varchar(128);not null" json:"customer_name"`
	CustomerEmail string     `gorm:"type:varchar(128)" json:"customer_email"`
	CustomerPhone string     `gorm:"type:varchar(32)" json:"customer_phone"`
	Items         string     `gorm:"type:text;not null" json:"items"` // OrderItem 列表的 JSON
	Amount        float64    `gorm:"not null" json:"amount"`          // 总金额 = 菜品小计 + 平台费（卢比）
	PlatformFee   float64    `gorm:"not null;default:0" json:"platform_fee"`
	PaymentMethod string     `gorm:"type:varchar(16);not null" json:"payment_method"`
	Status        string     `gorm:"type:varchar(20);index;not null" json:"status"`
	TableNo       string     `gorm:"type:varchar(16)" json:"table_no"`
	GatewayOrder  string     `gorm:"type:varchar(64);index" json:"gateway_order"` // 支付网关订单号，COD 为空
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// ParseItems 反序列化订单行
func (o *Order) ParseItems() ([]OrderItem, error) {
	var items []OrderItem
	if err := json.Unmarshal([]byte(o.Items), &items); err != nil {
		return nil, err
	}
	return items, nil
}
