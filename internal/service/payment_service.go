package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"armenu/internal/config"
	"armenu/internal/gateway/razorpay"
	"armenu/internal/infrastructure/lock"
	"armenu/internal/model"
	"armenu/internal/repository"
	"armenu/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount      = errors.New("金额必须大于0")
	ErrInvalidSignature   = errors.New("无效的支付签名")
	ErrMissingCredentials = errors.New("支付网关密钥未配置")
)

// PaymentService 支付网关订单的创建和验签 capture
//
// 【关键点】capture 是不可逆的资金动作，必须满足：
// 1. 验签在前：签名比对不通过，绝不能发起 capture
// 2. 并发安全：同一笔支付按 payment_id 加分布式锁，防止重复 capture
// 3. 留痕：capture 成功后记一笔只追加的支付流水
type PaymentService struct {
	db          *gorm.DB
	redisClient *redis.Client
	cfg         *config.Config
	gateway     *razorpay.Client
	orderRepo   *repository.OrderRepository
	recordRepo  *repository.PaymentRecordRepository
}

func NewPaymentService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, gateway *razorpay.Client) *PaymentService {
	return &PaymentService{
		db:          db,
		redisClient: redisClient,
		cfg:         cfg,
		gateway:     gateway,
		orderRepo:   repository.NewOrderRepository(db),
		recordRepo:  repository.NewPaymentRecordRepository(db),
	}
}

// ToMinorUnits 卢比转派萨（×100 四舍五入）
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateGatewayOrder 在网关开一笔支付订单
// amount 为主单位（卢比），网关侧按最小单位（派萨）记账
func (s *PaymentService) CreateGatewayOrder(ctx context.Context, amount float64) (*razorpay.Order, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if s.cfg.Razorpay.KeyID == "" || s.cfg.Razorpay.KeySecret == "" {
		return nil, ErrMissingCredentials
	}

	order, err := s.gateway.CreateOrder(ctx, ToMinorUnits(amount), s.cfg.Business.Currency, idgen.GenerateReceipt())
	if err != nil {
		return nil, err
	}
	return order, nil
}

// VerifyRequest 验签 capture 请求，字段名跟支付组件回调保持一致
type VerifyRequest struct {
	OrderID   string // razorpay_order_id
	PaymentID string // razorpay_payment_id
	Signature string // razorpay_signature
	Amount    int64  // capture 金额（派萨）
}

// VerifyAndCapture 验证支付签名并 capture
//
// 流程：验签 -> 加锁 -> 幂等检查 -> capture -> 落流水 + 订单标记 paid
// 任何一步验签失败都直接拒绝，不泄露多余信息
func (s *PaymentService) VerifyAndCapture(ctx context.Context, req *VerifyRequest) (*razorpay.Payment, error) {
	if s.cfg.Razorpay.KeyID == "" || s.cfg.Razorpay.KeySecret == "" {
		return nil, ErrMissingCredentials
	}

	// 验签必须发生在 capture 之前
	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return nil, ErrInvalidSignature
	}

	if s.redisClient != nil {
		captureLock := lock.NewCaptureLock(s.redisClient, req.PaymentID)
		if err := captureLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
			return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
		}
		defer captureLock.Unlock(ctx)
	}

	// 幂等：同一笔支付已有流水就直接返回，不再打网关
	existing, err := s.recordRepo.GetByPaymentID(ctx, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("查询支付流水失败: %w", err)
	}
	if existing != nil {
		return &razorpay.Payment{
			ID:       existing.PaymentID,
			Amount:   existing.Amount,
			Currency: existing.Currency,
			Status:   existing.GatewayStatus,
			OrderID:  existing.GatewayOrderID,
			Captured: true,
		}, nil
	}

	payment, err := s.gateway.CapturePayment(ctx, req.PaymentID, req.Amount)
	if err != nil {
		return nil, err
	}

	// capture 已在网关生效，本地记账失败只记日志，不把成功说成失败
	if err := s.recordCapture(ctx, req, payment); err != nil {
		log.Printf("[PaymentService] capture 落库失败: paymentID=%s, err=%v", req.PaymentID, err)
	}

	return payment, nil
}

func (s *PaymentService) recordCapture(ctx context.Context, req *VerifyRequest, payment *razorpay.Payment) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		record := &model.PaymentRecord{
			PaymentID:      payment.ID,
			GatewayOrderID: req.OrderID,
			Amount:         payment.Amount,
			Currency:       payment.Currency,
			GatewayStatus:  payment.Status,
		}

		// 把 capture 结果落回本地订单，只允许 pending -> paid
		order, err := s.orderRepo.GetByGatewayOrder(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if order != nil {
			record.OrderNo = order.OrderNo
			if err := s.orderRepo.MarkPaid(ctx, tx, order.OrderNo); err != nil {
				if !errors.Is(err, repository.ErrOrderStatusInvalid) {
					return err
				}
				log.Printf("[PaymentService] 订单已不是 pending，跳过标记: orderNo=%s", order.OrderNo)
			}
		}

		return s.recordRepo.Create(ctx, tx, record)
	})
}
