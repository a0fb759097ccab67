package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/plant-attendance-api/api/swagger"
	"github.com/noah-isme/plant-attendance-api/internal/handler"
	internalmiddleware "github.com/noah-isme/plant-attendance-api/internal/middleware"
	"github.com/noah-isme/plant-attendance-api/internal/service"
	"github.com/noah-isme/plant-attendance-api/internal/store"
	"github.com/noah-isme/plant-attendance-api/pkg/cache"
	"github.com/noah-isme/plant-attendance-api/pkg/config"
	"github.com/noah-isme/plant-attendance-api/pkg/database"
	"github.com/noah-isme/plant-attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/plant-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/plant-attendance-api/pkg/middleware/requestid"
)

// @title Plant Attendance API
// @version 1.0.0
// @description Role-based plant attendance with hybrid online/offline storage
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	localDB, err := database.NewSQLite(cfg.Local)
	if err != nil {
		logr.Fatal("failed to open local store", zap.Error(err))
	}
	defer localDB.Close()
	local := store.NewLocalStore(localDB)

	// The remote store is opened lazily: an unreachable Postgres at
	// startup is the expected offline case, not a fatal error.
	var remote *store.RemoteStore
	var probe *store.Probe
	if cfg.Database.Configured() {
		remoteDB, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("invalid remote store configuration", zap.Error(err))
		}
		defer remoteDB.Close()
		remote = store.NewRemoteStore(remoteDB)
		probe = store.NewProbe(remoteDB, cfg.Probe.Timeout, cfg.Probe.CacheTTL)
	} else {
		probe = store.NewProbe(nil, cfg.Probe.Timeout, cfg.Probe.CacheTTL)
		logr.Warn("no remote store configured, running offline-only")
	}

	admin, err := store.NewAdminSeed(cfg.Seed.AdminName, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword)
	if err != nil {
		logr.Fatal("failed to prepare seed data", zap.Error(err))
	}
	seeder := store.Seeder{Admin: admin}

	router := store.NewRouter(local, remote, probe, seeder, logr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := router.Initialize(ctx); err != nil {
		cancel()
		logr.Fatal("failed to initialize stores", zap.Error(err))
	}
	if err := seeder.Seed(ctx, local); err != nil {
		cancel()
		logr.Fatal("failed to seed local store", zap.Error(err))
	}
	cancel()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(router, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	workerSvc := service.NewWorkerService(router, validate, logr)
	attendanceSvc := service.NewAttendanceService(router, validate, logr)
	directorySvc := service.NewDirectoryService(router, validate, logr)
	userSvc := service.NewUserService(router, validate, logr)
	syncSvc := service.NewSyncService(router, logr)
	exportSvc := service.NewExportService(attendanceSvc, workerSvc, logr)
	dashboardSvc := service.NewDashboardService(router, attendanceSvc, redisClient, cfg.Redis.CacheTTL, logr)

	// Reconcile anything staged while the service was down.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), time.Minute)
	if outcome, err := syncSvc.Run(startupCtx); err == nil && outcome != nil {
		metricsSvc.ObserveSyncPass(outcome.Result.Replayed, outcome.Result.Failed)
	} else if err != nil {
		logr.Info("startup sync skipped", zap.Error(err))
	}
	startupCancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Workers:    handler.NewWorkerHandler(workerSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, dashboardSvc),
		Directory:  handler.NewDirectoryHandler(directorySvc),
		Users:      handler.NewUserHandler(userSvc),
		Sync:       handler.NewSyncHandler(syncSvc, metricsSvc),
		Exports:    handler.NewExportHandler(exportSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handlers)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "online", router.Online(context.Background()))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
