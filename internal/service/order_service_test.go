package service

import (
	"context"
	"testing"
	"time"

	"armenu/internal/model"
	"armenu/internal/repository"

	"github.com/stretchr/testify/require"
)

func TestFilterSince(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		filter string
		want   time.Time
	}{
		{"1h", now.Add(-time.Hour)},
		{"24h", now.Add(-24 * time.Hour)},
		{"today", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)},
		{"", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)}, // 缺省按今天算
		{"7d", now.Add(-7 * 24 * time.Hour)},
		{"all", time.Time{}},
	}
	for _, tt := range tests {
		t.Run("filter="+tt.filter, func(t *testing.T) {
			got, err := FilterSince(tt.filter, now)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := FilterSince("last_year", now)
	require.ErrorIs(t, err, ErrUnknownFilter)
}

func TestListOrdersTimeFilter(t *testing.T) {
	db := setupTestDB(t)
	s := NewOrderService(db)

	now := time.Now()
	orders := []*model.Order{
		{OrderNo: "ORD_recent", OwnerID: "owner_1", CustomerName: "A", Items: "[]",
			Amount: 100, PaymentMethod: model.PaymentMethodCOD, Status: model.OrderStatusPending,
			CreatedAt: now.Add(-30 * time.Minute)},
		{OrderNo: "ORD_old", OwnerID: "owner_1", CustomerName: "B", Items: "[]",
			Amount: 200, PaymentMethod: model.PaymentMethodCOD, Status: model.OrderStatusPaid,
			CreatedAt: now.Add(-48 * time.Hour)},
		{OrderNo: "ORD_other_owner", OwnerID: "owner_2", CustomerName: "C", Items: "[]",
			Amount: 300, PaymentMethod: model.PaymentMethodCOD, Status: model.OrderStatusPending,
			CreatedAt: now.Add(-10 * time.Minute)},
	}
	for _, o := range orders {
		require.NoError(t, db.Create(o).Error)
	}

	got, err := s.ListOrders(context.Background(), "owner_1", "1h")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "ORD_recent", got[0].OrderNo)

	got, err = s.ListOrders(context.Background(), "owner_1", "all")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// 倒序，新的在前
	require.Equal(t, "ORD_recent", got[0].OrderNo)
	require.Equal(t, "ORD_old", got[1].OrderNo)

	_, err = s.ListOrders(context.Background(), "owner_1", "bogus")
	require.ErrorIs(t, err, ErrUnknownFilter)
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	s := NewOrderService(db)

	order := &model.Order{
		OrderNo: "ORD_1", OwnerID: "owner_1", CustomerName: "A", Items: "[]",
		Amount: 100, PaymentMethod: model.PaymentMethodCOD, Status: model.OrderStatusPending,
	}
	require.NoError(t, db.Create(order).Error)

	// 合法状态流转，店主可以随意调整
	require.NoError(t, s.UpdateStatus(context.Background(), "ORD_1", model.OrderStatusCancelled))

	var got model.Order
	require.NoError(t, db.Where("order_no = ?", "ORD_1").First(&got).Error)
	require.Equal(t, model.OrderStatusCancelled, got.Status)

	// 标记 paid 要落 paid_at
	require.NoError(t, s.UpdateStatus(context.Background(), "ORD_1", model.OrderStatusPaid))
	require.NoError(t, db.Where("order_no = ?", "ORD_1").First(&got).Error)
	require.NotNil(t, got.PaidAt)

	// 集合外的状态直接拒绝
	err := s.UpdateStatus(context.Background(), "ORD_1", "shipped")
	require.ErrorIs(t, err, repository.ErrOrderStatusInvalid)

	err = s.UpdateStatus(context.Background(), "ORD_missing", model.OrderStatusPaid)
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestGetOrder(t *testing.T) {
	db := setupTestDB(t)
	s := NewOrderService(db)

	_, err := s.GetOrder(context.Background(), "ORD_missing")
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}
