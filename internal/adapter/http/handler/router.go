package handler

import (
	"marketplace-backoffice/internal/adapter/http/middleware"
	redisStore "marketplace-backoffice/internal/adapter/storage/redis"
	"marketplace-backoffice/internal/adapter/ws"
	"marketplace-backoffice/internal/core/domain"
	"marketplace-backoffice/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	ProductSvc     ports.ProductService
	KYCSvc         ports.KYCService
	OrderSvc       ports.OrderService
	UserAdminSvc   ports.UserAdminService
	PayoutSvc      ports.PayoutService
	ProjectionSvc  ports.ProjectionService
	TransitionRepo ports.TransitionRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	NoticeHub      *ws.Hub                    // nil = notices stream disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	productHandler := NewProductHandler(deps.ProductSvc)
	products := v1.Group("/products", jwtAuth)
	{
		products.POST("", rl("products"), middleware.RequireAction(domain.ActionSubmitProduct), productHandler.Submit)
		products.PUT("/:id/approve", rl("products"), middleware.RequireAction(domain.ActionApproveProduct), productHandler.Approve)
		products.PUT("/:id/reject", rl("products"), middleware.RequireAction(domain.ActionRejectProduct), productHandler.Reject)
		products.GET("", rl("products"), productHandler.List)
	}

	kycHandler := NewKYCHandler(deps.KYCSvc)
	kyc := v1.Group("/kyc", jwtAuth)
	{
		kyc.POST("", rl("kyc"), middleware.RequireAction(domain.ActionSubmitKYC), kycHandler.Submit)
		kyc.PUT("/:id/approve", rl("kyc"), middleware.RequireAction(domain.ActionApproveKYC), kycHandler.Approve)
		kyc.PUT("/:id/reject", rl("kyc"), middleware.RequireAction(domain.ActionRejectKYC), kycHandler.Reject)
		kyc.GET("", rl("kyc"), kycHandler.List)
	}

	orderHandler := NewOrderHandler(deps.OrderSvc)
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("", rl("orders"), middleware.RequireAction(domain.ActionCreateOrder), orderHandler.Create)
		orders.PUT("/:id/advance", rl("orders"), middleware.RequireAction(domain.ActionAdvanceOrder), orderHandler.Advance)
		orders.PUT("/:id/approve", rl("orders"), middleware.RequireAction(domain.ActionApproveOrder), orderHandler.Approve)
		orders.PUT("/:id/reject", rl("orders"), middleware.RequireAction(domain.ActionRejectOrder), orderHandler.Reject)
		orders.GET("", rl("orders"), orderHandler.List)
	}

	userHandler := NewUserHandler(deps.UserAdminSvc)
	users := v1.Group("/users", jwtAuth)
	{
		users.PUT("/:id/block", rl("dashboard"), middleware.RequireAction(domain.ActionBlockUser), userHandler.Block)
		users.PUT("/:id/unblock", rl("dashboard"), middleware.RequireAction(domain.ActionUnblockUser), userHandler.Unblock)
		users.DELETE("/:id", rl("dashboard"), middleware.RequireAction(domain.ActionDeleteUser), userHandler.Delete)
		users.POST("/:id/reset-password", rl("dashboard"), middleware.RequireAction(domain.ActionResetPassword), userHandler.ResetPassword)
	}

	payoutHandler := NewPayoutHandler(deps.PayoutSvc)
	payouts := v1.Group("/payouts", jwtAuth)
	{
		payouts.PUT("/:id/pay", rl("dashboard"), middleware.RequireAction(domain.ActionMarkPayoutPaid), payoutHandler.MarkPaid)
		payouts.GET("", rl("dashboard"), payoutHandler.List)
	}

	dashboardHandler := NewDashboardHandler(deps.ProjectionSvc, deps.TransitionRepo)
	dashboard := v1.Group("/dashboard", jwtAuth, middleware.RequireAction(domain.ActionViewDashboard))
	{
		dashboard.GET("/summary", rl("dashboard"), dashboardHandler.Summary)
		dashboard.GET("/transitions/:entity/:id", rl("dashboard"), dashboardHandler.Transitions)
	}

	// --- Live notices (WebSocket) ---
	if deps.NoticeHub != nil {
		v1.GET("/ws/notices", jwtAuth, middleware.RequireAction(domain.ActionReceiveNotices),
			gin.WrapF(deps.NoticeHub.Serve))
	}

	return r
}
