package service

import (
	"context"
	"log"
	"sort"
	"time"

	"armenu/internal/model"
	"armenu/internal/repository"

	"gorm.io/gorm"
)

// StatsService 店主看板和管理后台的聚合统计
// 订单行存的是 JSON，聚合都在内存里做，单店订单量不大，够用
type StatsService struct {
	orderRepo *repository.OrderRepository
	db        *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		orderRepo: repository.NewOrderRepository(db),
		db:        db,
	}
}

// DashboardStats 店主首页：今日单量、今日营收、活跃顾客数、最畅销菜品
type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	ActiveCustomers int     `json:"active_customers"`
	BestSeller      string  `json:"best_seller"`
}

func (s *StatsService) Dashboard(ctx context.Context, ownerID string) (*DashboardStats, error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	orders, err := s.orderRepo.ListByOwnerSince(ctx, ownerID, todayStart)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalOrders: len(orders),
		BestSeller:  "N/A",
	}

	customers := make(map[string]bool)
	itemCount := make(map[string]int)
	for _, order := range orders {
		stats.TotalRevenue += order.Amount
		if order.CustomerName != "" {
			customers[order.CustomerName] = true
		}
		items, err := order.ParseItems()
		if err != nil {
			log.Printf("[StatsService] 订单行解析失败: orderNo=%s, err=%v", order.OrderNo, err)
			continue
		}
		for _, item := range items {
			itemCount[item.Name]++
		}
	}
	stats.ActiveCustomers = len(customers)

	maxCount := 0
	for name, count := range itemCount {
		if count > maxCount {
			maxCount = count
			stats.BestSeller = name
		}
	}
	return stats, nil
}

// PopularDish 出现次数最多的菜品
type PopularDish struct {
	Name       string `json:"name"`
	OrderCount int    `json:"order_count"`
}

// AnalyticsStats 近30天的单量、营收和热销菜品
type AnalyticsStats struct {
	TotalOrders   int           `json:"total_orders"`
	TotalRevenue  float64       `json:"total_revenue"`
	PopularDishes []PopularDish `json:"popular_dishes"`
}

func (s *StatsService) Analytics(ctx context.Context, ownerID string, days int) (*AnalyticsStats, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	orders, err := s.orderRepo.ListByOwnerSince(ctx, ownerID, since)
	if err != nil {
		return nil, err
	}

	stats := &AnalyticsStats{TotalOrders: len(orders)}
	itemCount := make(map[string]int)
	for _, order := range orders {
		stats.TotalRevenue += order.Amount
		items, err := order.ParseItems()
		if err != nil {
			log.Printf("[StatsService] 订单行解析失败: orderNo=%s, err=%v", order.OrderNo, err)
			continue
		}
		for _, item := range items {
			itemCount[item.Name]++
		}
	}

	for name, count := range itemCount {
		stats.PopularDishes = append(stats.PopularDishes, PopularDish{Name: name, OrderCount: count})
	}
	sort.Slice(stats.PopularDishes, func(i, j int) bool {
		if stats.PopularDishes[i].OrderCount != stats.PopularDishes[j].OrderCount {
			return stats.PopularDishes[i].OrderCount > stats.PopularDishes[j].OrderCount
		}
		return stats.PopularDishes[i].Name < stats.PopularDishes[j].Name
	})
	return stats, nil
}

// AdminReportRow 管理后台按店主汇总的报表行
type AdminReportRow struct {
	OwnerID     string  `json:"owner_id"`
	Orders      int     `json:"orders"`
	CashAmount  float64 `json:"cash_amount"` // COD 金额
	UPIAmount   float64 `json:"upi_amount"`
	PlatformFee float64 `json:"platform_fee"`
}

// AdminReport 平台侧汇总：每个店主的单量、现金/UPI 金额和平台费收入
func (s *StatsService) AdminReport(ctx context.Context) ([]AdminReportRow, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*AdminReportRow)
	var owners []string
	for _, order := range orders {
		row, ok := rows[order.OwnerID]
		if !ok {
			row = &AdminReportRow{OwnerID: order.OwnerID}
			rows[order.OwnerID] = row
			owners = append(owners, order.OwnerID)
		}
		row.Orders++
		row.PlatformFee += order.PlatformFee
		switch order.PaymentMethod {
		case model.PaymentMethodCOD:
			row.CashAmount += order.Amount
		case model.PaymentMethodUPI:
			row.UPIAmount += order.Amount
		}
	}

	sort.Strings(owners)
	result := make([]AdminReportRow, 0, len(owners))
	for _, owner := range owners {
		result = append(result, *rows[owner])
	}
	return result, nil
}
