package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/batchplan-api/api/swagger"
	"github.com/noah-isme/batchplan-api/internal/handler"
	internalmiddleware "github.com/noah-isme/batchplan-api/internal/middleware"
	"github.com/noah-isme/batchplan-api/internal/repository"
	"github.com/noah-isme/batchplan-api/internal/service"
	"github.com/noah-isme/batchplan-api/pkg/cache"
	"github.com/noah-isme/batchplan-api/pkg/config"
	"github.com/noah-isme/batchplan-api/pkg/database"
	"github.com/noah-isme/batchplan-api/pkg/export"
	"github.com/noah-isme/batchplan-api/pkg/lock"
	"github.com/noah-isme/batchplan-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/batchplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/batchplan-api/pkg/middleware/requestid"
)

// @title Batchplan API
// @version 1.0.0
// @description Batch formation and faculty load balancing for cohort programmes.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	routes, err := buildRoutes(cfg, db, redisClient, metricsSvc, logr)
	if err != nil {
		logr.Fatal("failed to wire services", zap.Error(err))
	}

	dependencies := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		dependencies["redis"] = redisPinger{client: redisClient}
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc.Handler(), dependencies)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	routes.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildRoutes(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, metricsSvc *service.MetricsService, logr *zap.Logger) (handler.Routes, error) {
	validate := validator.New()

	var cacheClient redis.UniversalClient
	if redisClient != nil {
		cacheClient = redisClient
	}
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(cacheClient, "batchplan:"),
		metricsSvc,
		cfg.Stats.CacheTTL,
		logr.Named("cache"),
		cfg.Stats.CacheEnabled && cacheClient != nil,
	)

	locker, err := newLocker(cfg.Allocation, redisClient)
	if err != nil {
		return handler.Routes{}, err
	}

	composition := service.BatchComposition{
		PrimaryCourse:   cfg.Allocation.PrimaryCourse,
		PrimaryPerBatch: cfg.Allocation.PrimaryPerBatch,
		OtherPerBatch:   cfg.Allocation.OtherPerBatch,
	}

	batchRepo := repository.NewBatchRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assignmentRepo := repository.NewFacultyAssignmentRepository(db)

	balancer := service.NewFacultyLoadBalancer(assignmentRepo, batchRepo, cfg.Allocation.MaxAssignmentsPerFaculty, validate, logr.Named("faculty"))
	allocator, err := service.NewBatchAllocationService(
		repository.NewAllocationStore(db),
		balancer,
		locker,
		cacheSvc,
		metricsSvc,
		service.AllocationOptions{Composition: composition, NamingStrategy: cfg.Allocation.NamingStrategy},
		logr.Named("allocation"),
	)
	if err != nil {
		return handler.Routes{}, err
	}

	batchSvc := service.NewBatchService(batchRepo, studentRepo, assignmentRepo, composition, logr.Named("batches"), export.NewCSVExporter(), export.NewPDFExporter())
	applicationSvc := service.NewApplicationService(repository.NewApplicationRepository(db), cacheSvc, validate, logr.Named("applications"))
	attendanceSvc := service.NewAttendanceService(repository.NewAttendanceRepository(db), batchRepo, assignmentRepo, studentRepo, validate, logr.Named("attendance"))
	statsSvc := service.NewStatsService(repository.NewStatsRepository(db), cacheSvc, cfg.Stats.CacheTTL, logr.Named("stats"))
	markRepo := repository.NewMarkRepository(db)
	markSvc := service.NewMarkService(markRepo, batchRepo, assignmentRepo, studentRepo, validate, logr.Named("marks"))
	notificationSvc := service.NewNotificationService(repository.NewNotificationRepository(db), validate, logr.Named("notifications"))
	studentSvc := service.NewStudentService(studentRepo, batchRepo, assignmentRepo, markRepo, notificationSvc)
	tokens := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	}, logr.Named("tokens"))

	return handler.Routes{
		Tokens:        tokens,
		Batches:       handler.NewBatchHandler(allocator, batchSvc),
		Applications:  handler.NewApplicationHandler(applicationSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Stats:         handler.NewStatsHandler(statsSvc),
		Students:      handler.NewStudentHandler(studentSvc, markSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
	}, nil
}

func newLocker(cfg config.AllocationConfig, redisClient *redis.Client) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis lock backend requires REDIS_ENABLED=true")
		}
		return lock.NewRedisLocker(redisClient, "batchplan:lock", cfg.LockTTL, cfg.LockWait), nil
	default:
		return lock.NewMemoryLocker(cfg.LockWait), nil
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
