package routes

import (
	"campus-canteen-api/handlers"
	"campus-canteen-api/logging"
	"campus-canteen-api/metrics"
	"campus-canteen-api/middleware"
	"campus-canteen-api/models"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the shared middleware chain and every route
func NewRouter(h *handlers.Handler, m *metrics.Metrics) (*gin.Engine, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger(h.Log), m.Middleware(), middleware.CORS())

	r.GET("/health", handlers.Health)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	SetupRoutes(r, h)
	return r, nil
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/patron/signup", h.PatronSignup)
		public.POST("/auth/patron/login", h.PatronLogin)
		public.POST("/auth/staff/login", h.StaffLogin)

		public.GET("/menu", h.GetMenu)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(h.Tokens))
	{
		auth.GET("/profile", h.GetProfile)
	}

	// ── Patron routes ──────────────────────────────────────────────
	patron := r.Group("/api/orders")
	patron.Use(middleware.AuthRequired(h.Tokens), middleware.RoleRequired(models.RolePatron))
	{
		patron.POST("", h.PlaceOrder)
		patron.GET("/my", h.GetMyOrders)
		patron.GET("/my/:id", h.GetMyOrderDetail)
	}

	// ── Staff routes ───────────────────────────────────────────────
	staff := r.Group("/api/orders")
	staff.Use(middleware.AuthRequired(h.Tokens), middleware.RoleRequired(models.RoleStaff))
	{
		staff.GET("", h.ListAllOrders)
		staff.PATCH("/:id/status", h.UpdateOrderStatus)
		staff.GET("/:id/history", h.GetOrderHistory)
	}

	// ── Owner routes ───────────────────────────────────────────────
	owner := r.Group("/api/owner")
	owner.Use(middleware.AuthRequired(h.Tokens), middleware.RoleRequired(models.RoleOwner))
	{
		owner.GET("/summary", h.GetSummary)
	}
}
