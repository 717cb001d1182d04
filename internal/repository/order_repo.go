package repository

import (
	"context"
	"errors"
	"time"

	"armenu/internal/model"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("订单不存在")
	ErrOrderStatusInvalid = errors.New("订单状态不合法")
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetByGatewayOrder 按支付网关订单号查本地订单
// 验签通过后靠它把 capture 结果落回本地订单，查不到返回 nil
func (r *OrderRepository) GetByGatewayOrder(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*model.Order, error) {
	if tx == nil {
		tx = r.db
	}
	var order model.Order
	err := tx.WithContext(ctx).Where("gateway_order = ?", gatewayOrderID).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SetStatus 店主手动改状态，目标状态必须在合法集合内
func (r *OrderRepository) SetStatus(ctx context.Context, orderNo string, status string) error {
	if !model.IsValidStatus(status) {
		return ErrOrderStatusInvalid
	}

	updates := map[string]interface{}{
		"status": status,
	}
	if status == model.OrderStatusPaid {
		now := time.Now()
		updates["paid_at"] = &now
	}

	result := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_no = ?", orderNo).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid 支付回流专用：带条件更新，只允许 pending -> paid
// capture 成功但订单已不是 pending 时视为状态不合法，不覆盖店主的操作
func (r *OrderRepository) MarkPaid(ctx context.Context, tx *gorm.DB, orderNo string) error {
	if tx == nil {
		tx = r.db
	}

	now := time.Now()
	result := tx.WithContext(ctx).
		Model(&model.Order{}).
		Where("order_no = ? AND status = ?", orderNo, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":  model.OrderStatusPaid,
			"paid_at": &now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderStatusInvalid
	}
	return nil
}

// ListByOwnerSince 店主订单列表，按创建时间倒序
// since 为零值时不做时间过滤
func (r *OrderRepository) ListByOwnerSince(ctx context.Context, ownerID string, since time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// ListAll 管理后台用，全量订单倒序
func (r *OrderRepository) ListAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
