package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/taskbuddy/backend/api/handler"
	"github.com/taskbuddy/backend/internal/config"
	"github.com/taskbuddy/backend/internal/infrastructure/blobstore"
	"github.com/taskbuddy/backend/internal/infrastructure/monitor"
	pgInfra "github.com/taskbuddy/backend/internal/infrastructure/postgres"
	redisInfra "github.com/taskbuddy/backend/internal/infrastructure/redis"
	"github.com/taskbuddy/backend/internal/middleware"
	"github.com/taskbuddy/backend/internal/router"
	"github.com/taskbuddy/backend/internal/services"
	"github.com/taskbuddy/backend/internal/services/lifecycle"
	"github.com/taskbuddy/backend/pkg/httpcontext"
	"github.com/taskbuddy/backend/pkg/logger"
	"github.com/taskbuddy/backend/repository/postgres"
	redisRepo "github.com/taskbuddy/backend/repository/redis"
	authUC "github.com/taskbuddy/backend/usecase/auth"
	profileUC "github.com/taskbuddy/backend/usecase/profile"
	taskUC "github.com/taskbuddy/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	blobStore, err := blobstore.Open(cfg.Attachments.Path, "attachments")
	if err != nil {
		zapLogger.Fatal("failed to open attachment store", zap.Error(err))
	}
	manager.Register("attachments", func(ctx context.Context) error {
		return blobStore.Close()
	})

	mon := monitor.New(pool, redisClient, blobStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	statsRepo := postgres.NewStatsRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	sweeper := services.NewSweeper(blobStore, taskRepo, zapLogger, services.SweeperConfig{
		Interval:  cfg.Attachments.SweepInterval,
		Retention: cfg.Attachments.Retention,
	})
	sweeper.Start()
	manager.Register("attachment_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, authUC.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, statsRepo, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Attachment: apiHandler.NewAttachmentHandler(
			blobStore,
			cfg.Attachments.PublicBaseURL,
			cfg.Attachments.MaxUploadSize,
			ctxAdapter,
			zapLogger,
		),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:            r.Handler,
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		MaxRequestBodySize: int(cfg.Attachments.MaxUploadSize) + 1<<20,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
