package service

import (
	"context"
	"errors"
	"time"

	"armenu/internal/model"
	"armenu/internal/repository"

	"gorm.io/gorm"
)

var ErrUnknownFilter = errors.New("不支持的时间过滤条件")

type OrderService struct {
	orderRepo *repository.OrderRepository
	db        *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{
		orderRepo: repository.NewOrderRepository(db),
		db:        db,
	}
}

// FilterSince 把订单列表的时间过滤条件换算成起始时间
// 店主端的四个档位：最近1小时 / 最近24小时 / 今天 / 最近7天，all 不过滤
func FilterSince(filter string, now time.Time) (time.Time, error) {
	switch filter {
	case "1h":
		return now.Add(-time.Hour), nil
	case "24h":
		return now.Add(-24 * time.Hour), nil
	case "today", "":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	case "7d":
		return now.Add(-7 * 24 * time.Hour), nil
	case "all":
		return time.Time{}, nil
	default:
		return time.Time{}, ErrUnknownFilter
	}
}

func (s *OrderService) ListOrders(ctx context.Context, ownerID, filter string) ([]*model.Order, error) {
	since, err := FilterSince(filter, time.Now())
	if err != nil {
		return nil, err
	}
	return s.orderRepo.ListByOwnerSince(ctx, ownerID, since)
}

func (s *OrderService) GetOrder(ctx context.Context, orderNo string) (*model.Order, error) {
	return s.orderRepo.GetByOrderNo(ctx, orderNo)
}

// UpdateStatus 店主改单，状态必须是 pending/paid/cancelled 之一
func (s *OrderService) UpdateStatus(ctx context.Context, orderNo, status string) error {
	return s.orderRepo.SetStatus(ctx, orderNo, status)
}

// ListAllOrders 管理后台全量订单
func (s *OrderService) ListAllOrders(ctx context.Context) ([]*model.Order, error) {
	return s.orderRepo.ListAll(ctx)
}
