// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/handlers"
	"github.com/samoku/samoku-backend/internal/middleware"
	"github.com/samoku/samoku-backend/internal/services"
	"github.com/samoku/samoku-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	commissionService := services.NewCommissionService(db, notificationService)
	fulfillmentService := services.NewFulfillmentService(db, commissionService, notificationService)

	authService := services.NewAuthService(db, cfg)
	storeService := services.NewStoreService(db, notificationService)
	productService := services.NewProductService(db, cfg)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, cfg, commissionService, notificationService)
	dropshipService := services.NewDropshipService(db, cfg, fulfillmentService)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, storeService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, notificationService)
	storeHandler := handlers.NewStoreHandler(storeService, productService, fulfillmentService, commissionService, storageService)
	adminHandler := handlers.NewAdminHandler(adminService, storeService, commissionService, dropshipService)
	webhookHandler := handlers.NewWebhookHandler(dropshipService, cfg)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
			auth.POST("/change-password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		// Storefront routes
		products := v1.Group("/products")
		{
			products.GET("", middleware.OptionalAuth(), productHandler.SearchProducts)
			products.GET("/categories", productHandler.GetCategories)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
		}

		stores := v1.Group("/stores")
		{
			stores.GET("", storeHandler.ListStores)
			stores.GET("/:slug", storeHandler.GetStoreBySlug)
			stores.GET("/:slug/products", storeHandler.GetStoreProducts)
		}

		// Cart and wishlist routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", cartHandler.GetWishlist)
			wishlist.POST("/:productId", cartHandler.AddToWishlist)
			wishlist.DELETE("/:productId", cartHandler.RemoveFromWishlist)
			wishlist.POST("/:productId/move-to-cart", cartHandler.MoveToCart)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("/checkout", orderHandler.Checkout)
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", orderHandler.GetNotifications)
			notifications.POST("/:id/read", orderHandler.MarkNotificationRead)
		}

		// Vendor routes
		vendor := v1.Group("/vendor")
		vendor.Use(middleware.AuthRequired(), middleware.VendorRequired())
		{
			vendor.POST("/store", storeHandler.CreateStore)
			vendor.GET("/store", storeHandler.GetOwnStore)
			vendor.PUT("/store", storeHandler.UpdateStore)
			vendor.POST("/store/logo", middleware.UploadRateLimit(), storeHandler.UploadLogo)

			vendor.GET("/dashboard", storeHandler.GetDashboard)
			vendor.GET("/inventory", storeHandler.GetInventory)

			vendor.POST("/products", productHandler.CreateProduct)
			vendor.PUT("/products/:id", productHandler.UpdateProduct)
			vendor.DELETE("/products/:id", productHandler.DeleteProduct)
			vendor.POST("/products/:id/stock", productHandler.AdjustStock)
			vendor.POST("/products/images", middleware.UploadRateLimit(), productHandler.UploadProductImage)

			vendor.GET("/order-items", storeHandler.GetOrderItems)
			vendor.PUT("/order-items/:id/status", storeHandler.UpdateOrderItemStatus)

			vendor.GET("/commissions", storeHandler.GetCommissions)
			vendor.POST("/payouts", middleware.PayoutRateLimit(), storeHandler.RequestPayout)
			vendor.GET("/payouts", storeHandler.GetPayouts)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/orders", adminHandler.ListOrders)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)

			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.ListUsers)
				adminUsers.PUT("/:id/status", adminHandler.SetUserStatus)
			}

			adminStores := admin.Group("/stores")
			{
				adminStores.GET("", adminHandler.ListStores)
				adminStores.POST("/:id/approve", adminHandler.ApproveStore)
				adminStores.PUT("/:id/commission-rate", adminHandler.SetCommissionRate)
			}

			adminPayouts := admin.Group("/payouts")
			{
				adminPayouts.GET("", adminHandler.ListPayouts)
				adminPayouts.POST("/:id/complete", adminHandler.CompletePayout)
			}

			adminDropship := admin.Group("/dropship")
			{
				adminDropship.POST("/import", adminHandler.ImportDropshipProducts)
				adminDropship.GET("/logs", adminHandler.GetDropshipLogs)
			}

			adminSettings := admin.Group("/settings")
			{
				adminSettings.GET("", adminHandler.GetSettings)
				adminSettings.PUT("/:category/:key", adminHandler.UpdateSetting)
			}
		}

		// Supplier webhook ingress
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit())
		{
			webhooks.POST("/dropship", webhookHandler.HandleDropshipEvent)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
