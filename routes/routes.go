package routes

import (
	"emptio-backend/handlers"
	"emptio-backend/middleware"
	"emptio-backend/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Catalog (no auth needed)
		public.GET("/products", handlers.GetProducts)
		public.GET("/products/featured", handlers.GetFeaturedProducts)
		public.GET("/products/:id", handlers.GetProductByID)
		public.POST("/products/seed", handlers.SeedProducts)

		// Checkout works for guests too: the order is tied to the
		// shipping email when no account is attached.
		public.POST("/orders", handlers.CreateOrder)
		public.GET("/orders/guest", handlers.GetGuestOrders)

		// Order lifecycle reference (great for docs/Postman)
		public.GET("/orders/lifecycle", handlers.GetOrderLifecycle)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/auth/profile", handlers.GetProfile)

		auth.GET("/orders", handlers.GetUserOrders)
		auth.GET("/orders/:id", handlers.GetOrderByID)
		auth.PUT("/orders/:id/cancel", handlers.CancelOrder)
		auth.PUT("/orders/:id/return", handlers.RequestReturn)
	}

	// ── Admin routes ───────────────────────────────────────────────
	adminOnly := []models.UserRole{models.RoleAdmin}

	legacyAdmin := r.Group("/api/orders")
	legacyAdmin.Use(middleware.AuthRequired(), middleware.RoleRequired(adminOnly...))
	{
		// Older dashboard paths, kept alive alongside /api/admin.
		legacyAdmin.PUT("/:id/status", handlers.UpdateOrderStatus)
		legacyAdmin.GET("/admin/all", handlers.AdminGetAllOrders)
	}

	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(adminOnly...))
	{
		admin.GET("/orders", handlers.AdminGetAllOrders)
		admin.GET("/orders/stats", handlers.GetOrderStats)
		admin.GET("/orders/:id", handlers.AdminGetOrderByID)
		admin.PUT("/orders/:id/status", handlers.AdminUpdateOrderStatus)

		admin.GET("/products", handlers.AdminGetProducts)
		admin.POST("/products", handlers.CreateProduct)
		admin.GET("/products/:id", handlers.GetProductByID)
		admin.PUT("/products/:id", handlers.UpdateProduct)
		admin.DELETE("/products/:id", handlers.DeleteProduct)
	}
}
