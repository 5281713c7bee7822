package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/masterskaya-backend/internal/config"
	"github.com/ignatzorin/masterskaya-backend/internal/db"
	httpHandlers "github.com/ignatzorin/masterskaya-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/masterskaya-backend/internal/http/router"
	"github.com/ignatzorin/masterskaya-backend/internal/logger"
	"github.com/ignatzorin/masterskaya-backend/internal/repository"
	"github.com/ignatzorin/masterskaya-backend/internal/service"
	"github.com/ignatzorin/masterskaya-backend/internal/storage"
	"github.com/ignatzorin/masterskaya-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	fileStorage, err := storage.NewFileStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	listingRepo := repository.NewListingRepository(dbConn)
	orderRepo := repository.NewOrderRepository(dbConn)
	proofRepo := repository.NewProofRepository(dbConn)
	refundRepo := repository.NewRefundRepository(dbConn)
	timelineRepo := repository.NewTimelineRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	listingService := service.NewListingService(listingRepo)
	orderService := service.NewOrderService(orderRepo, listingRepo, timelineRepo, cfg.PlatformFeeRate)
	proofService := service.NewProofService(proofRepo, orderRepo)
	escrowService := service.NewEscrowService(orderRepo, cfg.PlatformFeeRate)
	refundService := service.NewRefundService(refundRepo, orderRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	seedService := service.NewSeedService(userRepo, listingRepo, orderRepo, proofRepo, refundRepo, cfg.PlatformFeeRate)

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	listingHandler := httpHandlers.NewListingHandler(listingService)
	orderHandler := httpHandlers.NewOrderHandler(orderService, hub)
	proofHandler := httpHandlers.NewProofHandler(proofService, orderService, hub)
	refundHandler := httpHandlers.NewRefundHandler(refundService, orderService, hub)
	escrowHandler := httpHandlers.NewEscrowHandler(escrowService)
	mediaHandler := httpHandlers.NewMediaHandler(mediaRepo, fileStorage)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)
	seedHandler := httpHandlers.NewSeedHandler(seedService)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		listingHandler,
		orderHandler,
		proofHandler,
		refundHandler,
		escrowHandler,
		mediaHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		seedHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
