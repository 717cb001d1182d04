package handler

import (
	"errors"
	"net/http"

	"armenu/internal/gateway/razorpay"
	"armenu/internal/gateway/twilio"
	"armenu/internal/service"
	"armenu/pkg/response"

	"github.com/gin-gonic/gin"
)

// ============================================================
// 支付相关接口
//
// 这三个接口是给前端支付组件对接的，响应格式沿用网关对接约定，
// 不走统一 response 包装
// ============================================================

// CreatePaymentOrder 在支付网关开单
// POST /api/v1/payment/order
func (h *Handler) CreatePaymentOrder(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	order, err := h.paymentService.CreateGatewayOrder(c.Request.Context(), req.Amount)
	if err != nil {
		var apiErr *razorpay.APIError
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &apiErr):
			// 网关错误体原样透传，便于前端排查
			c.JSON(http.StatusInternalServerError, gin.H{"error": apiErr.Body})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// 直接回网关订单对象，前端用它拉起支付组件
	c.JSON(http.StatusOK, order)
}

// VerifyPaymentRequest 字段名跟支付组件回调参数保持一致
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	Amount    int64  `json:"amount"` // 派萨
}

// VerifyPayment 验证支付签名并 capture
// POST /api/v1/payment/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "参数错误: " + err.Error()})
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "缺少必要参数"})
		return
	}

	payment, err := h.paymentService.VerifyAndCapture(c.Request.Context(), &service.VerifyRequest{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		Amount:    req.Amount,
	})
	if err != nil {
		var apiErr *razorpay.APIError
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		case errors.As(err, &apiErr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": apiErr.Body})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payment})
}

// SendNotification 发送短信通知
// POST /api/v1/notify/sms
func (h *Handler) SendNotification(c *gin.Context) {
	var req struct {
		CustomerPhone string `json:"customerPhone"`
		Message       string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}
	if req.CustomerPhone == "" || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少必填字段"})
		return
	}

	sid, err := h.smsGateway.SendSMS(c.Request.Context(), req.CustomerPhone, req.Message)
	if err != nil {
		var apiErr *twilio.APIError
		switch {
		case errors.Is(err, twilio.ErrMissingCredentials):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "短信网关凭证未配置"})
		case errors.As(err, &apiErr):
			c.JSON(http.StatusInternalServerError, gin.H{"error": apiErr.Body})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sid": sid})
}

// ============================================================
// 下单接口
// ============================================================

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	OwnerID       string             `json:"owner_id" binding:"required"`
	CustomerName  string             `json:"customer_name" binding:"required"`
	CustomerEmail string             `json:"customer_email"`
	CustomerPhone string             `json:"customer_phone"`
	TableNo       string             `json:"table_no"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	Items         []service.CartLine `json:"items" binding:"required"`
}

// Checkout 顾客下单
// POST /api/v1/checkout
func (h *Handler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), &service.CheckoutRequest{
		OwnerID:       req.OwnerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TableNo:       req.TableNo,
		PaymentMethod: req.PaymentMethod,
		Lines:         req.Items,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrMissingCustomer):
			response.ParamError(c, err.Error())
		default:
			response.BusinessError(c, response.CodePaymentFailed, err.Error())
		}
		return
	}

	response.Success(c, result)
}
