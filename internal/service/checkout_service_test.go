package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"armenu/internal/gateway/razorpay"
	"armenu/internal/model"

	"github.com/stretchr/testify/require"
)

func TestMergeCartLines(t *testing.T) {
	lines := []CartLine{
		{MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 1},
		{MenuItemID: 2, Name: "Dal Makhani", Price: 150, Quantity: 1},
		{MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 1},
	}

	merged := MergeCartLines(lines)
	require.Len(t, merged, 2)
	// 合并后保持首次出现的顺序
	require.Equal(t, int64(1), merged[0].MenuItemID)
	require.Equal(t, 2, merged[0].Quantity)
	require.Equal(t, int64(2), merged[1].MenuItemID)
	require.Equal(t, 1, merged[1].Quantity)
}

func TestItemsTotal(t *testing.T) {
	lines := []CartLine{
		{MenuItemID: 1, Price: 100, Quantity: 2},
		{MenuItemID: 2, Price: 150, Quantity: 1},
	}
	require.Equal(t, float64(350), ItemsTotal(lines))
	require.Equal(t, float64(0), ItemsTotal(nil))
}

func TestPlatformFee(t *testing.T) {
	s := NewCheckoutService(setupTestDB(t), testConfig(), nil)

	require.Equal(t, float64(50), s.PlatformFee(model.PaymentMethodUPI))
	require.Equal(t, float64(0), s.PlatformFee(model.PaymentMethodCOD))
}

func newGatewayStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(razorpay.Order{
			ID:       "order_gw1",
			Entity:   "order",
			Amount:   int64(body["amount"].(float64)),
			Currency: "INR",
			Status:   "created",
		})
	}))
}

func TestCheckoutUPI(t *testing.T) {
	server := newGatewayStub(t)
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	paymentService := NewPaymentService(db, nil, cfg, gateway)
	s := NewCheckoutService(db, cfg, paymentService)

	resp, err := s.Checkout(context.Background(), &CheckoutRequest{
		OwnerID:       "owner_1",
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		TableNo:       "T3",
		PaymentMethod: model.PaymentMethodUPI,
		Lines: []CartLine{
			{MenuItemID: 1, Name: "Paneer Tikka", Price: 100, Quantity: 2},
			{MenuItemID: 2, Name: "Dal Makhani", Price: 150, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// 350 小计 + 50 平台费 = 400
	require.Equal(t, float64(350), resp.ItemsTotal)
	require.Equal(t, float64(50), resp.PlatformFee)
	require.Equal(t, float64(400), resp.GrandTotal)

	// UPI 订单带网关订单号，金额按派萨计
	require.NotNil(t, resp.GatewayOrder)
	require.Equal(t, "order_gw1", resp.GatewayOrder.ID)
	require.Equal(t, int64(40000), resp.GatewayOrder.Amount)

	// 订单以 pending 落库
	var order model.Order
	require.NoError(t, db.Where("order_no = ?", resp.Order.OrderNo).First(&order).Error)
	require.Equal(t, model.OrderStatusPending, order.Status)
	require.Equal(t, "order_gw1", order.GatewayOrder)
	require.Equal(t, float64(400), order.Amount)

	items, err := order.ParseItems()
	require.NoError(t, err)
	require.Len(t, items, 2)

	// 订单事件和订单同事务落库
	var outbox model.OutboxMessage
	require.NoError(t, db.Where("message_key = ?", order.OrderNo).First(&outbox).Error)
	require.Equal(t, model.OutboxStatusPending, outbox.Status)
	require.Equal(t, "armenu.order.created", outbox.Topic)

	// 短信在事务提交后排队
	var sms model.SmsMessage
	require.NoError(t, db.Where("order_no = ?", order.OrderNo).First(&sms).Error)
	require.Equal(t, model.SmsStatusPending, sms.Status)
	require.Equal(t, "9876543210", sms.Phone)
	require.Contains(t, sms.Body, "Asha")
	require.Contains(t, sms.Body, order.OrderNo)
}

func TestCheckoutCOD(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	// COD 不碰网关，paymentService 不会被调用到
	s := NewCheckoutService(db, cfg, NewPaymentService(db, nil, cfg, razorpay.NewClient("http://127.0.0.1:0", "k", "s")))

	resp, err := s.Checkout(context.Background(), &CheckoutRequest{
		OwnerID:       "owner_1",
		CustomerName:  "Ravi",
		PaymentMethod: model.PaymentMethodCOD,
		Lines: []CartLine{
			{MenuItemID: 1, Name: "Masala Dosa", Price: 80, Quantity: 1},
		},
	})
	require.NoError(t, err)

	// COD 不收平台费，没有网关订单
	require.Equal(t, float64(0), resp.PlatformFee)
	require.Equal(t, float64(80), resp.GrandTotal)
	require.Nil(t, resp.GatewayOrder)
	require.Empty(t, resp.Order.GatewayOrder)

	// 没留手机号就不排短信
	var count int64
	require.NoError(t, db.Model(&model.SmsMessage{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	s := NewCheckoutService(db, cfg, nil)

	resp, err := s.Checkout(context.Background(), &CheckoutRequest{
		OwnerID:       "owner_1",
		CustomerName:  "Ravi",
		PaymentMethod: model.PaymentMethodCOD,
		Lines: []CartLine{
			{MenuItemID: 1, Name: "Masala Dosa", Price: 80, Quantity: 1},
			{MenuItemID: 1, Name: "Masala Dosa", Price: 80, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Equal(t, float64(240), resp.GrandTotal)

	items, err := resp.Order.ParseItems()
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 3, items[0].Quantity)
}

func TestCheckoutValidation(t *testing.T) {
	db := setupTestDB(t)
	s := NewCheckoutService(db, testConfig(), nil)

	line := CartLine{MenuItemID: 1, Name: "Dosa", Price: 80, Quantity: 1}

	tests := []struct {
		name    string
		req     *CheckoutRequest
		wantErr error
	}{
		{
			"缺顾客姓名",
			&CheckoutRequest{PaymentMethod: model.PaymentMethodCOD, Lines: []CartLine{line}},
			ErrMissingCustomer,
		},
		{
			"支付方式不合法",
			&CheckoutRequest{CustomerName: "Ravi", PaymentMethod: "CARD", Lines: []CartLine{line}},
			ErrInvalidPaymentMethod,
		},
		{
			"空购物车",
			&CheckoutRequest{CustomerName: "Ravi", PaymentMethod: model.PaymentMethodCOD},
			ErrEmptyCart,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Checkout(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// 数量为0直接拒绝
	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		CustomerName:  "Ravi",
		PaymentMethod: model.PaymentMethodCOD,
		Lines:         []CartLine{{MenuItemID: 1, Name: "Dosa", Price: 80, Quantity: 0}},
	})
	require.Error(t, err)

	// 缺菜品ID的行会在合并时被错误归并，必须拒绝：
	// 两道不同的菜都没带ID时绝不能合成一行
	_, err = s.Checkout(context.Background(), &CheckoutRequest{
		CustomerName:  "Ravi",
		PaymentMethod: model.PaymentMethodCOD,
		Lines: []CartLine{
			{Name: "Dosa", Price: 80, Quantity: 1},
			{Name: "Chai", Price: 20, Quantity: 1},
		},
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCheckoutUPIGatewayFailure(t *testing.T) {
	// 网关挂了，UPI 下单整体失败，不落库
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"description":"server error"}}`))
	}))
	defer server.Close()

	db := setupTestDB(t)
	cfg := testConfig()
	gateway := razorpay.NewClient(server.URL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	s := NewCheckoutService(db, cfg, NewPaymentService(db, nil, cfg, gateway))

	_, err := s.Checkout(context.Background(), &CheckoutRequest{
		OwnerID:       "owner_1",
		CustomerName:  "Asha",
		PaymentMethod: model.PaymentMethodUPI,
		Lines:         []CartLine{{MenuItemID: 1, Name: "Dosa", Price: 80, Quantity: 1}},
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}
