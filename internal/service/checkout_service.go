package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"armenu/internal/config"
	"armenu/internal/gateway/razorpay"
	"armenu/internal/model"
	"armenu/internal/repository"
	"armenu/pkg/idgen"

	"gorm.io/gorm"
)

var (
	ErrEmptyCart            = errors.New("购物车不能为空")
	ErrInvalidPaymentMethod = errors.New("不支持的支付方式")
	ErrMissingCustomer      = errors.New("顾客姓名不能为空")
)

// CartLine 购物车里的一行
type CartLine struct {
	MenuItemID  int64   `json:"menu_item_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// MergeCartLines 按菜品合并重复行，数量累加
// 合并后保持首次出现的顺序，方便小票展示
func MergeCartLines(lines []CartLine) []CartLine {
	index := make(map[int64]int)
	merged := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		if pos, ok := index[line.MenuItemID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.MenuItemID] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// ItemsTotal 菜品小计 = Σ(单价×数量)
func ItemsTotal(lines []CartLine) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// CheckoutService 下单流程
//
// 一次下单的状态机：
//   选菜 -> 填信息 -> 选支付方式 -> [网关下单 -> 组件授权] -> 订单落库 -> 短信排队 -> 完成
//
// 订单落库是持久化边界：订单 + outbox 事件在同一个事务里提交，
// 短信在提交之后排队，排队或发送失败都不影响订单
type CheckoutService struct {
	db             *gorm.DB
	cfg            *config.Config
	paymentService *PaymentService
	orderRepo      *repository.OrderRepository
	outboxRepo     *repository.OutboxRepository
	smsRepo        *repository.SmsRepository
}

func NewCheckoutService(db *gorm.DB, cfg *config.Config, paymentService *PaymentService) *CheckoutService {
	return &CheckoutService{
		db:             db,
		cfg:            cfg,
		paymentService: paymentService,
		orderRepo:      repository.NewOrderRepository(db),
		outboxRepo:     repository.NewOutboxRepository(db),
		smsRepo:        repository.NewSmsRepository(db),
	}
}

type CheckoutRequest struct {
	OwnerID       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TableNo       string
	PaymentMethod string // COD / UPI
	Lines         []CartLine
}

type CheckoutResponse struct {
	Order        *model.Order    `json:"order"`
	ItemsTotal   float64         `json:"items_total"`
	PlatformFee  float64         `json:"platform_fee"`
	GrandTotal   float64         `json:"grand_total"`
	GatewayOrder *razorpay.Order `json:"gateway_order,omitempty"` // UPI 才有，给前端拉起支付组件用
}

// PlatformFee UPI 走网关收固定平台费，COD 不收
func (s *CheckoutService) PlatformFee(paymentMethod string) float64 {
	if paymentMethod == model.PaymentMethodUPI {
		return s.cfg.Business.PlatformFee
	}
	return 0
}

// Checkout 下单
// UPI 订单以 pending 状态落库，只有验签 capture 回流才会变成 paid
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	if req.CustomerName == "" {
		return nil, ErrMissingCustomer
	}
	if !model.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	lines := MergeCartLines(req.Lines)
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		// 合并按菜品ID分组，缺ID的行会被错误地并到一起，必须拒绝
		if line.MenuItemID <= 0 {
			return nil, errors.New("订单行缺少菜品ID")
		}
		if line.Quantity <= 0 || line.Price < 0 {
			return nil, errors.New("订单行数量或单价不合法")
		}
	}

	itemsTotal := ItemsTotal(lines)
	platformFee := s.PlatformFee(req.PaymentMethod)
	grandTotal := itemsTotal + platformFee

	// UPI 先在网关开单，开单失败整个下单失败，不重试
	var gatewayOrder *razorpay.Order
	if req.PaymentMethod == model.PaymentMethodUPI {
		var err error
		gatewayOrder, err = s.paymentService.CreateGatewayOrder(ctx, grandTotal)
		if err != nil {
			return nil, fmt.Errorf("支付网关下单失败: %w", err)
		}
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, model.OrderItem{
			MenuItemID:  line.MenuItemID,
			Name:        line.Name,
			Description: line.Description,
			Price:       line.Price,
			Quantity:    line.Quantity,
		})
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		OrderNo:       idgen.GenerateOrderNo(),
		OwnerID:       req.OwnerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Items:         string(itemsJSON),
		Amount:        grandTotal,
		PlatformFee:   platformFee,
		PaymentMethod: req.PaymentMethod,
		Status:        model.OrderStatusPending,
		TableNo:       req.TableNo,
	}
	if gatewayOrder != nil {
		order.GatewayOrder = gatewayOrder.ID
	}

	// 订单 + outbox 事件同一个事务，事件由后台任务发往 Kafka
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("创建订单失败: %w", err)
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"order_no":       order.OrderNo,
			"owner_id":       order.OwnerID,
			"customer_name":  order.CustomerName,
			"table_no":       order.TableNo,
			"amount":         order.Amount,
			"payment_method": order.PaymentMethod,
			"status":         order.Status,
		})
		outboxMsg := &model.OutboxMessage{
			MessageKey: order.OrderNo,
			Topic:      s.cfg.Kafka.Topic.OrderCreated,
			Payload:    string(payload),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
			return fmt.Errorf("写入订单事件失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// 短信在事务提交之后排队，失败只记日志，订单已经生效
	s.enqueueReceiptSMS(ctx, order)

	log.Printf("下单成功: orderNo=%s, ownerID=%s, amount=%.2f, method=%s",
		order.OrderNo, order.OwnerID, order.Amount, order.PaymentMethod)

	return &CheckoutResponse{
		Order:        order,
		ItemsTotal:   itemsTotal,
		PlatformFee:  platformFee,
		GrandTotal:   grandTotal,
		GatewayOrder: gatewayOrder,
	}, nil
}

func (s *CheckoutService) enqueueReceiptSMS(ctx context.Context, order *model.Order) {
	if order.CustomerPhone == "" {
		return
	}

	body := fmt.Sprintf("Hi %s, your order %s (table %s) for Rs.%.2f has been placed. Thank you!",
		order.CustomerName, order.OrderNo, order.TableNo, order.Amount)

	msg := &model.SmsMessage{
		MessageNo: idgen.GenerateMessageNo(),
		OrderNo:   order.OrderNo,
		Phone:     order.CustomerPhone,
		Body:      body,
		Status:    model.SmsStatusPending,
	}
	if err := s.smsRepo.Create(ctx, nil, msg); err != nil {
		log.Printf("[CheckoutService] 短信排队失败: orderNo=%s, err=%v", order.OrderNo, err)
	}
}
