package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/satouyama/pesto-sub001/controllers"
	"github.com/satouyama/pesto-sub001/kds"
	"github.com/satouyama/pesto-sub001/middlewares"
	"github.com/satouyama/pesto-sub001/models"
	"github.com/satouyama/pesto-sub001/services"
	"gorm.io/gorm"
)

// Dependencies groups everything the route table needs.
type Dependencies struct {
	DB             *gorm.DB
	Orders         *services.OrderService
	Reports        *services.ReportService
	Hub            *kds.Hub
	Currency       string
	AllowedOrigins []string
}

var backOffice = []string{models.RoleAdmin, models.RoleManager, models.RoleStaff}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.AllowedOrigins))
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(deps.DB)
	orderCtrl := controllers.NewOrderController(deps.Orders)
	paymentCtrl := controllers.NewPaymentController(deps.Orders)
	notificationCtrl := controllers.NewNotificationController(deps.DB)
	adminCtrl := controllers.NewAdminController(deps.Reports, deps.Currency)
	kdsCtrl := controllers.NewKDSController(deps.Hub, deps.AllowedOrigins)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// strict limiter for login/register
	public := r.Group("/")
	public.Use(middlewares.NewRateLimiter(10, time.Minute).RateLimit())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	account := r.Group("/me")
	account.Use(middlewares.AuthMiddleware())
	{
		account.GET("", userCtrl.GetProfile)
		account.POST("/logout", userCtrl.Logout)
	}

	checkout := r.Group("/orders")
	checkout.Use(middlewares.NewRateLimiter(30, time.Minute).RateLimit())
	{
		// guest boleh order, token opsional
		checkout.POST("", middlewares.OptionalAuth(), orderCtrl.CreateOrder)
		checkout.GET("/:order_id", orderCtrl.GetOrderByID)
	}

	// return / cancel urls of the payment gateway
	payment := r.Group("/orders/:order_id/payment")
	payment.Use(middlewares.PaymentSecurityHeaders(), middlewares.PaymentRateLimiter(), middlewares.LogPaymentRequest())
	{
		payment.GET("/capture", paymentCtrl.CapturePayment)
		payment.GET("/cancel", paymentCtrl.CancelPayment)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRoles(backOffice...))

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	auth.PUT("/orders/:order_id", orderCtrl.UpdateOrder)
	auth.PATCH("/orders/:order_id", orderCtrl.PatchOrder)
	auth.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
	auth.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)

	// REPORTS
	auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	auth.GET("/reports/charges", adminCtrl.GetChargeReport)

	// NOTIFICATIONS: any signed-in user (riders included) reads their own
	notifications := r.Group("/admin/notifications")
	notifications.Use(middlewares.AuthMiddleware())
	{
		notifications.GET("", notificationCtrl.GetMyNotifications)
		notifications.PATCH("/:notif_id/read", notificationCtrl.MarkAsRead)
	}

	// WebSocket endpoint with its own auth middleware
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware(append(backOffice, models.RoleDelivery)...))
	{
		ws.GET("/kds", kdsCtrl.KDSHandler)
	}

	return r
}
