package main

import (
	"catalog-service/internal/handler"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/model"
	"catalog-service/internal/service"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalog-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	db, err := database.InitDB(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Services hold their store handles explicitly
	authService := service.NewAuthService(db)
	categoryService := service.NewCategoryService(db)
	productService := service.NewProductService(db)
	reportService := service.NewReportService(db)

	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	productHandler := handler.NewProductHandler(productService)
	reportHandler := handler.NewReportHandler(reportService)
	healthHandler := handler.NewHealthHandler(db)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Operational endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", healthHandler.Check)

	api := e.Group("/api")

	// Auth routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/auth/profile", authHandler.Profile, mid.AuthMiddleware)

	editors := mid.RequireRoles(model.RoleAdmin, model.RoleManager)
	admins := mid.RequireRoles(model.RoleAdmin)

	// Category API routes
	categoryAPI := api.Group("/categories", mid.AuthMiddleware)
	categoryAPI.POST("", categoryHandler.Create, editors)
	categoryAPI.GET("", categoryHandler.ListTrees)
	categoryAPI.GET("/roots", categoryHandler.ListRoots)
	categoryAPI.GET("/stats", categoryHandler.Stats)
	categoryAPI.GET("/:id", categoryHandler.Get)
	categoryAPI.GET("/:id/children", categoryHandler.Children)
	categoryAPI.GET("/:id/parents", categoryHandler.Parents)
	categoryAPI.PATCH("/:id", categoryHandler.Update, editors)
	categoryAPI.PATCH("/:id/move/root", categoryHandler.MoveToRoot, editors)
	categoryAPI.PATCH("/:id/move/:newParentId", categoryHandler.Move, editors)
	categoryAPI.DELETE("/:id", categoryHandler.Delete, admins)

	// Product API routes
	productAPI := api.Group("/products", mid.AuthMiddleware)
	productAPI.POST("", productHandler.Create, editors)
	productAPI.GET("", productHandler.List)
	productAPI.GET("/stats", productHandler.Stats)
	productAPI.GET("/low-stock", productHandler.LowStock)
	productAPI.GET("/out-of-stock", productHandler.OutOfStock)
	productAPI.GET("/featured", productHandler.Featured)
	productAPI.GET("/category/:categoryId", productHandler.ByCategory)
	productAPI.GET("/search", productHandler.Search)
	productAPI.GET("/:id", productHandler.Get)
	productAPI.PATCH("/:id", productHandler.Update, editors)
	productAPI.DELETE("/:id", productHandler.Delete, admins)

	// Report API routes
	reportAPI := api.Group("/reports", mid.AuthMiddleware, editors)
	reportAPI.GET("/products/stats", reportHandler.ProductStats)
	reportAPI.GET("/categories/stats", reportHandler.CategoryStats)
	reportAPI.GET("/products/top", reportHandler.TopProducts)
	reportAPI.GET("/inventory/low-stock", reportHandler.LowStock)
	reportAPI.GET("/inventory/out-of-stock", reportHandler.OutOfStock)
	reportAPI.GET("/products/growth", reportHandler.Growth)
	reportAPI.GET("/inventory/value", reportHandler.InventoryValue)
	reportAPI.GET("/users/activity", reportHandler.UserActivity)
	reportAPI.GET("/system/health", reportHandler.SystemHealth)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
