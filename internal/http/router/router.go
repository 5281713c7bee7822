package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/masterskaya-backend/internal/config"
	"github.com/ignatzorin/masterskaya-backend/internal/http/handlers"
	"github.com/ignatzorin/masterskaya-backend/internal/http/middleware"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	listingHandler *handlers.ListingHandler,
	orderHandler *handlers.OrderHandler,
	proofHandler *handlers.ProofHandler,
	refundHandler *handlers.RefundHandler,
	escrowHandler *handlers.EscrowHandler,
	mediaHandler *handlers.MediaHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	seedHandler *handlers.SeedHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	if seedHandler != nil && cfg.Env == "development" {
		api.POST("/seed", seedHandler.Seed)
		api.GET("/seed", seedHandler.Seed)
	}

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", authHandler.DeleteSession)
		protectedAuth.DELETE("/sessions", authHandler.DeleteAllSessionsExcept)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/listings/:id", middleware.UUIDValidator("id"), listingHandler.GetListing)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/notifications", notificationHandler.ListNotifications)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.GET("/notifications/:id", notificationHandler.GetNotification)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", notificationHandler.DeleteNotification)

		// Объявления мастеров
		protected.POST("/listings", listingHandler.CreateListing)
		protected.GET("/listings/my", listingHandler.ListMyListings)
		protected.PATCH("/listings/:id/active", middleware.UUIDValidator("id"), listingHandler.SetListingActive)

		// Заказы
		protected.POST("/orders", orderHandler.PlaceOrder)
		protected.GET("/orders/my", orderHandler.ListMyOrders)
		protected.GET("/orders/:id", middleware.UUIDValidator("id"), orderHandler.GetOrder)
		protected.GET("/orders/:id/timeline", middleware.UUIDValidator("id"), orderHandler.GetTimeline)

		// Переходы жизненного цикла
		protected.POST("/orders/:id/close-consultation", middleware.UUIDValidator("id"), orderHandler.CloseConsultation)
		protected.POST("/orders/:id/confirm-receipt", middleware.UUIDValidator("id"), orderHandler.ConfirmReceipt)
		protected.POST("/orders/:id/start-production", middleware.UUIDValidator("id"), orderHandler.StartProduction)
		protected.POST("/orders/:id/ready-for-delivery", middleware.UUIDValidator("id"), orderHandler.MarkReadyForDelivery)
		protected.POST("/orders/:id/ship", middleware.UUIDValidator("id"), orderHandler.MarkShipped)
		protected.POST("/orders/:id/complete", middleware.UUIDValidator("id"), orderHandler.CompleteOrder)
		protected.POST("/orders/:id/cancel", middleware.UUIDValidator("id"), orderHandler.CancelOrder)

		// Макеты
		protected.POST("/orders/:id/proofs", middleware.UUIDValidator("id"), proofHandler.SubmitProof)
		protected.GET("/orders/:id/proofs", middleware.UUIDValidator("id"), proofHandler.ListProofs)
		protected.GET("/proofs/:id", middleware.UUIDValidator("id"), proofHandler.GetProof)
		protected.POST("/proofs/:id/resolve", middleware.UUIDValidator("id"), proofHandler.ResolveProof)

		// Удержанные средства
		protected.GET("/orders/:id/escrow", middleware.UUIDValidator("id"), escrowHandler.GetEscrowState)
		protected.POST("/orders/:id/escrow/release", middleware.UUIDValidator("id"), escrowHandler.ReleaseEscrow)

		// Возвраты
		protected.POST("/orders/:id/refunds", middleware.UUIDValidator("id"), refundHandler.RequestRefund)
		protected.GET("/orders/:id/refunds", middleware.UUIDValidator("id"), refundHandler.ListRefunds)
		protected.GET("/refunds/my", refundHandler.ListMyRefunds)
		protected.GET("/refunds/:id", middleware.UUIDValidator("id"), refundHandler.GetRefund)
		protected.POST("/refunds/:id/respond", middleware.UUIDValidator("id"), refundHandler.RespondToRefund)

		protected.POST("/media/files", mediaHandler.UploadFile)
		protected.DELETE("/media/:id", middleware.UUIDValidator("id"), mediaHandler.DeleteMedia)
	}

	return r
}
