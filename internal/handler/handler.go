package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"armenu/internal/config"
	"armenu/internal/gateway/razorpay"
	"armenu/internal/gateway/twilio"
	"armenu/internal/model"
	"armenu/internal/repository"
	"armenu/internal/service"
	"armenu/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	cfg             *config.Config
	smsGateway      *twilio.Client
	menuService     *service.MenuService
	orderService    *service.OrderService
	statsService    *service.StatsService
	settingsService *service.SettingsService
	paymentService  *service.PaymentService
	checkoutService *service.CheckoutService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	payGateway := razorpay.NewClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	smsGateway := twilio.NewClient(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber, cfg.Business.CountryCode)

	paymentService := service.NewPaymentService(db, rdb, cfg, payGateway)

	return &Handler{
		cfg:             cfg,
		smsGateway:      smsGateway,
		menuService:     service.NewMenuService(db),
		orderService:    service.NewOrderService(db),
		statsService:    service.NewStatsService(db),
		settingsService: service.NewSettingsService(db),
		paymentService:  paymentService,
		checkoutService: service.NewCheckoutService(db, cfg, paymentService),
	}
}

// ============================================================
// 菜单相关接口
// ============================================================

// MenuItemRequest 菜单项请求
type MenuItemRequest struct {
	OwnerID     string  `json:"owner_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	ModelURL    string  `json:"model_url"`
	IsPublic    bool    `json:"is_public"`
}

// CreateMenuItem 新建菜品
// POST /api/v1/menu/create
func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.menuService.CreateItem(c.Request.Context(), req.OwnerID, &service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		ModelURL:    req.ModelURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, item)
}

// UpdateMenuItem 更新菜品
// POST /api/v1/menu/update
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req struct {
		MenuItemRequest
		ID int64 `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.menuService.UpdateItem(c.Request.Context(), req.OwnerID, req.ID, &service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		ModelURL:    req.ModelURL,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			response.BusinessError(c, response.CodeMenuItemNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "菜品已更新"})
}

// DeleteMenuItem 删除菜品
// POST /api/v1/menu/delete
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	var req struct {
		OwnerID string `json:"owner_id" binding:"required"`
		ID      int64  `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.menuService.DeleteItem(c.Request.Context(), req.OwnerID, req.ID); err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			response.BusinessError(c, response.CodeMenuItemNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "菜品已删除"})
}

// ListMenuItems 店主菜单列表
// GET /api/v1/menu/list?owner_id=xxx
func (h *Handler) ListMenuItems(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	items, err := h.menuService.ListItems(c.Request.Context(), ownerID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, items)
}

// MenuQR 扫码物料：返回店主公开菜单页的链接
// 二维码由前端根据链接渲染，服务端只负责拼地址
// GET /api/v1/menu/qr?owner_id=xxx
func (h *Handler) MenuQR(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	base := strings.TrimSuffix(h.cfg.Server.PublicBaseURL, "/")
	response.Success(c, gin.H{
		"owner_id": ownerID,
		"menu_url": fmt.Sprintf("%s/menu/%s", base, ownerID),
	})
}

// PublicMenu 扫码菜单页，公开菜品按分类分组
// GET /api/v1/menu/public?owner_id=xxx
func (h *Handler) PublicMenu(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	grouped, err := h.menuService.PublicMenu(c.Request.Context(), ownerID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, grouped)
}

// ============================================================
// 订单相关接口
// ============================================================

// ListOrders 店主订单列表，支持时间过滤
// GET /api/v1/order/list?owner_id=xxx&filter=today
func (h *Handler) ListOrders(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), ownerID, c.DefaultQuery("filter", "today"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownFilter) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, orders)
}

// GetOrder 订单详情
// GET /api/v1/order/detail?order_no=xxx
func (h *Handler) GetOrder(c *gin.Context) {
	orderNo := c.Query("order_no")
	if orderNo == "" {
		response.ParamError(c, "order_no 参数不能为空")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderNo)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			response.BusinessError(c, response.CodeOrderNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, order)
}

// UpdateOrderStatus 店主改单状态
// POST /api/v1/order/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		OrderNo string `json:"order_no" binding:"required"`
		Status  string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	if err := h.orderService.UpdateStatus(c.Request.Context(), req.OrderNo, req.Status); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderStatusInvalid):
			response.BusinessError(c, response.CodeOrderStatusInvalid, err.Error())
		case errors.Is(err, repository.ErrOrderNotFound):
			response.BusinessError(c, response.CodeOrderNotFound, err.Error())
		default:
			response.ServerError(c, err.Error())
		}
		return
	}

	response.Success(c, gin.H{"message": "订单状态已更新"})
}

// ============================================================
// 统计相关接口
// ============================================================

// DashboardStats 店主首页看板
// GET /api/v1/stats/dashboard?owner_id=xxx
func (h *Handler) DashboardStats(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	stats, err := h.statsService.Dashboard(c.Request.Context(), ownerID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, stats)
}

// AnalyticsStats 近N天经营分析
// GET /api/v1/stats/analytics?owner_id=xxx&days=30
func (h *Handler) AnalyticsStats(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	stats, err := h.statsService.Analytics(c.Request.Context(), ownerID, days)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, stats)
}

// ============================================================
// 店主设置接口
// ============================================================

// GetBankDetail 查询收款信息
// GET /api/v1/settings/bank?owner_id=xxx
func (h *Handler) GetBankDetail(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		response.ParamError(c, "owner_id 参数不能为空")
		return
	}

	detail, err := h.settingsService.GetBankDetail(c.Request.Context(), ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrBankDetailNotFound) {
			response.BusinessError(c, response.CodeBankDetailNotFound, err.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, detail)
}

// SaveBankDetail 保存收款信息（每店主一行，覆盖更新）
// POST /api/v1/settings/bank
func (h *Handler) SaveBankDetail(c *gin.Context) {
	var req struct {
		OwnerID       string `json:"owner_id" binding:"required"`
		AccountHolder string `json:"account_holder" binding:"required"`
		AccountNumber string `json:"account_number" binding:"required"`
		IFSC          string `json:"ifsc" binding:"required"`
		UPIID         string `json:"upi_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.settingsService.SaveBankDetail(c.Request.Context(), &model.BankDetail{
		OwnerID:       req.OwnerID,
		AccountHolder: req.AccountHolder,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		UPIID:         req.UPIID,
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "收款信息已保存"})
}

// ============================================================
// 管理后台接口
// ============================================================

// AdminListOrders 全量订单
// GET /api/v1/admin/orders
func (h *Handler) AdminListOrders(c *gin.Context) {
	orders, err := h.orderService.ListAllOrders(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, orders)
}

// AdminReport 按店主汇总的平台报表
// GET /api/v1/admin/report
func (h *Handler) AdminReport(c *gin.Context) {
	report, err := h.statsService.AdminReport(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, report)
}
