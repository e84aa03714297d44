package main

import (
	"net/http"

	"emptio-backend/config"
	"emptio-backend/logger"
	"emptio-backend/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Get()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.InitDB(cfg.DBPath); err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := config.SeedAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatal("failed to seed admin account", zap.Error(err))
		}
	}

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Emptio Backend",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Emptio API",
			"docs":    "/api/orders/lifecycle",
			"health":  "/health",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupRoutes(r)

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
