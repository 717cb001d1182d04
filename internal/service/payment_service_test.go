package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"armenu/internal/gateway/razorpay"
	"armenu/internal/model"

	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{500, 50000},
		{0.01, 1},
		{99.99, 9999},
		{123.45, 12345}, // 浮点误差由四舍五入吸收
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ToMinorUnits(tt.amount), "amount=%v", tt.amount)
	}
}

// captureStub 记录 capture 被调用的次数，验证验签失败/幂等命中时不会打网关
type captureStub struct {
	captureCalls int
}

func (cs *captureStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/capture") {
			http.NotFound(w, r)
			return
		}
		cs.captureCalls++
		paymentID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/payments/"), "/capture")

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(razorpay.Payment{
			ID:       paymentID,
			Entity:   "payment",
			Amount:   int64(body["amount"].(float64)),
			Currency: "INR",
			Status:   "captured",
			OrderID:  "order_gw1",
			Captured: true,
		})
	}))
}

func TestVerifyAndCapture(t *testing.T) {
	stub := &captureStub{}
	server := stub.server(t)
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s := NewPaymentService(db, nil, cfg, gateway)

	// 本地有一笔 pending 的 UPI 订单等着支付回流
	order := &model.Order{
		OrderNo:       "ORD20260830000001",
		OwnerID:       "owner_1",
		CustomerName:  "Asha",
		Items:         `[{"menu_item_id":1,"name":"Dosa","price":400,"quantity":1}]`,
		Amount:        400,
		PaymentMethod: model.PaymentMethodUPI,
		Status:        model.OrderStatusPending,
		GatewayOrder:  "order_gw1",
	}
	require.NoError(t, db.Create(order).Error)

	sig := razorpay.Signature(cfg.Razorpay.KeySecret, "order_gw1", "pay_1")
	payment, err := s.VerifyAndCapture(context.Background(), &VerifyRequest{
		OrderID:   "order_gw1",
		PaymentID: "pay_1",
		Signature: sig,
		Amount:    40000,
	})
	require.NoError(t, err)
	require.Equal(t, 1, stub.captureCalls)
	require.True(t, payment.Captured)
	require.Equal(t, int64(40000), payment.Amount)

	// 支付流水落库
	var rec model.PaymentRecord
	require.NoError(t, db.Where("payment_id = ?", "pay_1").First(&rec).Error)
	require.Equal(t, "order_gw1", rec.GatewayOrderID)
	require.Equal(t, order.OrderNo, rec.OrderNo)
	require.Equal(t, int64(40000), rec.Amount)

	// 订单 pending -> paid
	var got model.Order
	require.NoError(t, db.Where("order_no = ?", order.OrderNo).First(&got).Error)
	require.Equal(t, model.OrderStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
}

func TestVerifyAndCaptureInvalidSignature(t *testing.T) {
	stub := &captureStub{}
	server := stub.server(t)
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s := NewPaymentService(db, nil, cfg, gateway)

	_, err := s.VerifyAndCapture(context.Background(), &VerifyRequest{
		OrderID:   "order_gw1",
		PaymentID: "pay_1",
		Signature: "deadbeef",
		Amount:    40000,
	})
	require.ErrorIs(t, err, ErrInvalidSignature)

	// 验签失败绝不能发起 capture
	require.Equal(t, 0, stub.captureCalls)

	var count int64
	require.NoError(t, db.Model(&model.PaymentRecord{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestVerifyAndCaptureIdempotent(t *testing.T) {
	stub := &captureStub{}
	server := stub.server(t)
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s := NewPaymentService(db, nil, cfg, gateway)

	sig := razorpay.Signature(cfg.Razorpay.KeySecret, "order_gw1", "pay_1")
	req := &VerifyRequest{OrderID: "order_gw1", PaymentID: "pay_1", Signature: sig, Amount: 40000}

	first, err := s.VerifyAndCapture(context.Background(), req)
	require.NoError(t, err)

	// 重复回调命中流水，不再打网关
	second, err := s.VerifyAndCapture(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, stub.captureCalls)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.Amount, second.Amount)
	require.True(t, second.Captured)

	var count int64
	require.NoError(t, db.Model(&model.PaymentRecord{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestVerifyAndCaptureMissingCredentials(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.Razorpay.KeyID = ""
	cfg.Razorpay.KeySecret = ""
	s := NewPaymentService(db, nil, cfg, razorpay.NewClient("", "", ""))

	_, err := s.VerifyAndCapture(context.Background(), &VerifyRequest{
		OrderID: "o", PaymentID: "p", Signature: "s", Amount: 1,
	})
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestVerifyAndCaptureSkipsNonPendingOrder(t *testing.T) {
	stub := &captureStub{}
	server := stub.server(t)
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s := NewPaymentService(db, nil, cfg, gateway)

	// 店主已经取消的订单，capture 结果不能覆盖 cancelled
	order := &model.Order{
		OrderNo:       "ORD20260830000002",
		OwnerID:       "owner_1",
		CustomerName:  "Asha",
		Items:         `[]`,
		Amount:        400,
		PaymentMethod: model.PaymentMethodUPI,
		Status:        model.OrderStatusCancelled,
		GatewayOrder:  "order_gw1",
	}
	require.NoError(t, db.Create(order).Error)

	sig := razorpay.Signature(cfg.Razorpay.KeySecret, "order_gw1", "pay_2")
	_, err := s.VerifyAndCapture(context.Background(), &VerifyRequest{
		OrderID: "order_gw1", PaymentID: "pay_2", Signature: sig, Amount: 40000,
	})
	require.NoError(t, err)

	var got model.Order
	require.NoError(t, db.Where("order_no = ?", order.OrderNo).First(&got).Error)
	require.Equal(t, model.OrderStatusCancelled, got.Status)

	// 流水照记，留对账痕迹
	var rec model.PaymentRecord
	require.NoError(t, db.Where("payment_id = ?", "pay_2").First(&rec).Error)
	require.Equal(t, order.OrderNo, rec.OrderNo)
}

func TestCreateGatewayOrderInvalidAmount(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	s := NewPaymentService(db, nil, cfg, razorpay.NewClient("", cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret))

	for _, amount := range []float64{0, -1} {
		_, err := s.CreateGatewayOrder(context.Background(), amount)
		require.ErrorIs(t, err, ErrInvalidAmount, fmt.Sprintf("amount=%v", amount))
	}
}
