package app

import (
	"context"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/db"
	"stockroom/internal/handlers"
	"stockroom/internal/logger"
	"stockroom/internal/middleware"
	"stockroom/internal/repository"
	"stockroom/internal/routes"
	"stockroom/internal/services"
	"stockroom/internal/storage"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func InitApp(cfg *config.Config) (*mux.Router, error) {
	if err := db.RunMigrations(context.Background(), cfg); err != nil {
		return nil, err
	}

	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	resetRepo := repository.NewPasswordResetRepository(conn)

	// Media backend
	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	// Services
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(userRepo)
	resetTTL, err := time.ParseDuration(cfg.ResetTokenTTL)
	if err != nil {
		resetTTL = 30 * time.Minute
	}
	passwordService := services.NewPasswordService(resetRepo, userRepo, emailService, cfg.FrontendURL, resetTTL)
	productService := services.NewProductService(productRepo)

	// Handlers
	userHandler := handlers.NewUserHandler(authService, passwordService, cfg)
	productHandler := handlers.NewProductHandler(productService, store)
	contactHandler := handlers.NewContactHandler(emailService)

	emailService.StartWorkers(3)
	startResetTokenSweeper(passwordService)

	router := mux.NewRouter()
	auth := middleware.Auth(cfg.JWTSecret, userRepo)
	routes.InitRoutes(router, auth, cfg.Env, userHandler, productHandler, contactHandler)

	return router, nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.UploadBackend == "s3" {
		logger.Log.Info("media storage: s3", zap.String("bucket", cfg.S3Bucket))
		return storage.NewS3Storage(context.Background(), cfg)
	}
	logger.Log.Info("media storage: local", zap.String("dir", cfg.UploadDir))
	return storage.NewLocalStorage(cfg.UploadDir)
}

// startResetTokenSweeper purges expired reset rows every hour.
func startResetTokenSweeper(svc *services.PasswordService) {
	c := cron.New()
	_, err := c.AddFunc("@hourly", func() {
		svc.SweepExpired(context.Background())
	})
	if err != nil {
		logger.Log.Error("could not schedule reset token sweeper", zap.Error(err))
		return
	}
	c.Start()
}
