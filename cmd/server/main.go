package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/adapters/event"
	httpAdapter "github.com/khoahotran/screenvault/adapters/http"
	"github.com/khoahotran/screenvault/adapters/media_storage"
	"github.com/khoahotran/screenvault/adapters/persistence"
	"github.com/khoahotran/screenvault/internal/application/service"
	authUC "github.com/khoahotran/screenvault/internal/application/usecase/auth"
	feedUC "github.com/khoahotran/screenvault/internal/application/usecase/feed"
	videoUC "github.com/khoahotran/screenvault/internal/application/usecase/video"
	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/auth"
	"github.com/khoahotran/screenvault/pkg/logger"
	"github.com/khoahotran/screenvault/pkg/tracing"
)

const (
	serviceName     = "screenvault-api"
	shutdownTimeout = 10 * time.Second
	limiterTTL      = 10 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Start ScreenVault API Server...", zap.String("env", cfg.App.Env))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}

	// Repositories
	var (
		userRepo  user.Repository
		videoRepo video.Repository
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := persistence.NewMemoryStore()
		userRepo, videoRepo = store.Users(), store.Videos()
		appLogger.Warn("Using in-memory store, data is lost on restart")
	default:
		dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Postgres", err)
		}
		defer dbPool.Close()
		userRepo = persistence.NewPostgresUserRepo(dbPool, appLogger)
		videoRepo = persistence.NewPostgresVideoRepo(dbPool, appLogger)
	}

	var viewSessions persistence.ViewSessionStore
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(ctx, cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()
		viewSessions = persistence.NewRedisViewSessions(redisClient, cfg.Redis.SessionTTL)
	} else {
		appLogger.Warn("Redis not configured, view sessions are kept in memory")
		viewSessions = persistence.NewMemoryViewSessions(cfg.Redis.SessionTTL)
	}

	// Services
	appMetrics := metrics.NewDefault()
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	storage, err := media_storage.NewFileStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init file storage", err)
	}

	var publisher service.VideoEventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger, appMetrics.ObserveDelivery)
		if err != nil {
			appLogger.Fatal("cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		cleanup := videoUC.NewCleanupStorageUseCase(storage, appMetrics, appLogger)
		queue := event.NewLocalQueue(cfg.Cleanup.QueueSize, cleanup, appLogger)
		queue.Start(context.Background())
		defer func() {
			drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := queue.Close(drainCtx); err != nil {
				appLogger.Error("Cleanup queue did not drain", err)
			}
		}()
		publisher = queue
		appLogger.Info("Kafka not configured, storage cleanup runs in-process")
	}

	// Use Cases
	incrementViews := videoUC.NewIncrementViewsUseCase(videoRepo, appLogger)
	videoUseCases := httpAdapter.VideoUseCases{
		ListPublic:       videoUC.NewListPublicVideosUseCase(videoRepo, appLogger),
		ListOwned:        videoUC.NewListOwnedVideosUseCase(videoRepo, appLogger),
		GetAuthorized:    videoUC.NewGetAuthorizedVideoUseCase(videoRepo, appLogger),
		GetPublic:        videoUC.NewGetPublicVideoUseCase(videoRepo, appLogger),
		Create:           videoUC.NewCreateVideoUseCase(videoRepo, appLogger),
		UpdateVisibility: videoUC.NewUpdateVisibilityUseCase(videoRepo, appLogger),
		UpdateDetails:    videoUC.NewUpdateDetailsUseCase(videoRepo, appLogger),
		Delete:           videoUC.NewDeleteVideoUseCase(videoRepo, publisher, appMetrics, appLogger),
		RecordView:       videoUC.NewRecordViewUseCase(videoRepo, viewSessions, incrementViews, appMetrics, appLogger),
	}
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	currentUserUseCase := authUC.NewGetCurrentUserUseCase(userRepo, appLogger)
	rssUseCase := feedUC.NewRSSUseCase(videoRepo, cfg.App.PublicURL, cfg.App.FrontendURL, appLogger)

	router := httpAdapter.NewRouter(httpAdapter.RouterDeps{
		Logger:      appLogger,
		JWT:         jwtSvc,
		Metrics:     appMetrics,
		ViewLimiter: httpAdapter.NewIPRateLimiter(cfg.RateLimit.ViewsPerMinute, cfg.RateLimit.Burst, limiterTTL),
		Auth:        httpAdapter.NewAuthHandler(loginUseCase, currentUserUseCase, appLogger),
		Videos:      httpAdapter.NewVideoHandler(videoUseCases),
		RSS:         httpAdapter.NewRSSHandler(rssUseCase, appLogger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Cannot run server", err)
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		appLogger.Error("Failed to flush traces", err)
	}
}
