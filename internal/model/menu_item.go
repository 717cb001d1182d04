package model

import (
	"time"
)

// MenuItem 菜单项表
// 店主维护自己的菜单，is_public 控制是否出现在扫码菜单页上
type MenuItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID     string    `gorm:"type:varchar(64);index;not null" json:"owner_id"`
	Name        string    `gorm:"type:varchar(128);not null" json:"name"`
	Description string    `gorm:"type:varchar(512)" json:"description"`
	Price       float64   `gorm:"not null" json:"price"` // 单价（卢比）
	Category    string    `gorm:"type:varchar(64);index" json:"category"`
	ImageURL    string    `gorm:"type:varchar(512)" json:"image_url"`
	ModelURL    string    `gorm:"type:varchar(512)" json:"model_url"` // 可选的 3D 模型地址
	IsPublic    bool      `gorm:"not null;default:true" json:"is_public"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MenuItem) TableName() string {
	return "menu_items"
}
