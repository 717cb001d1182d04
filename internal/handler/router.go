package handler

import (
	"armenu/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 支付相关（前端支付组件直连）
		payment := api.Group("/payment")
		{
			payment.POST("/order", h.CreatePaymentOrder)
			payment.POST("/verify", h.VerifyPayment)
		}

		// 短信通知
		notify := api.Group("/notify")
		{
			notify.POST("/sms", h.SendNotification)
		}

		// 顾客下单
		api.POST("/checkout", h.Checkout)

		// 菜单相关
		menu := api.Group("/menu")
		{
			menu.GET("/public", h.PublicMenu)
			menu.GET("/qr", h.MenuQR)
			menu.GET("/list", h.ListMenuItems)
			menu.POST("/create", h.CreateMenuItem)
			menu.POST("/update", h.UpdateMenuItem)
			menu.POST("/delete", h.DeleteMenuItem)
		}

		// 订单相关
		order := api.Group("/order")
		{
			order.GET("/list", h.ListOrders)
			order.GET("/detail", h.GetOrder)
			order.POST("/status", h.UpdateOrderStatus)
		}

		// 统计相关
		stats := api.Group("/stats")
		{
			stats.GET("/dashboard", h.DashboardStats)
			stats.GET("/analytics", h.AnalyticsStats)
		}

		// 店主设置
		settings := api.Group("/settings")
		{
			settings.GET("/bank", h.GetBankDetail)
			settings.POST("/bank", h.SaveBankDetail)
		}

		// 管理后台
		admin := api.Group("/admin", AdminAuthMiddleware(cfg.Admin.Key))
		{
			admin.GET("/orders", h.AdminListOrders)
			admin.GET("/report", h.AdminReport)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
