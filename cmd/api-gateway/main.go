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
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/escola-api/api/swagger"
	"github.com/noah-isme/escola-api/internal/handler"
	"github.com/noah-isme/escola-api/internal/middleware"
	"github.com/noah-isme/escola-api/internal/repository"
	"github.com/noah-isme/escola-api/internal/router"
	"github.com/noah-isme/escola-api/internal/service"
	"github.com/noah-isme/escola-api/pkg/cache"
	"github.com/noah-isme/escola-api/pkg/config"
	"github.com/noah-isme/escola-api/pkg/database"
	"github.com/noah-isme/escola-api/pkg/jobs"
	"github.com/noah-isme/escola-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/escola-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/escola-api/pkg/middleware/requestid"
	"github.com/noah-isme/escola-api/pkg/storage"
)

// @title Escola API
// @version 1.0.0
// @description Student registry, enrollments and tuition billing
// @BasePath /
// @schemes http https
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient redis.Cmdable
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
			cfg.Cache.Enabled = false
		} else {
			defer client.Close()
			redisClient = client
		}
	}

	store, err := newExportStore(ctx, cfg.Exports)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err), zap.String("driver", cfg.Exports.StorageDriver))
	}
	signer := storage.NewURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	tx := repository.NewTxRunner(db)
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassOfferingRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	installmentRepo := repository.NewInstallmentRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	settingsRepo := repository.NewSiteSettingsRepository(db)
	exportRepo := repository.NewLedgerExportRepository(db)

	validate := service.NewValidator()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	calendar := service.NewBillingCalendar(time.Now, cfg.Billing.Location())

	authSvc := service.NewAuthService(tx, userRepo, studentRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "escola-api",
	})
	studentSvc := service.NewStudentService(tx, studentRepo, validate, logr)
	classSvc := service.NewClassOfferingService(classRepo, cacheSvc, validate, logr)
	settingsSvc := service.NewSiteSettingsService(settingsRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(tx, enrollmentRepo, installmentRepo, studentRepo, classRepo, calendar, metrics, validate, logr)
	billingSvc := service.NewBillingService(tx, installmentRepo, enrollmentRepo, studentRepo, calendar, metrics, logr)
	scheduleSvc := service.NewScheduleService(slotRepo, studentRepo, classRepo, cacheSvc, metrics, validate, logr)
	announcementSvc := service.NewAnnouncementService(tx, announcementRepo, validate, logr)
	exportSvc := service.NewLedgerExportService(exportRepo, billingSvc, store, signer, metrics, validate, logr, service.LedgerExportConfig{
		DownloadPath:    cfg.APIPrefix + "/exports/download/",
		Retention:       cfg.Exports.Retention,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})

	exportQueue := jobs.NewQueue[string]("ledger-exports", exportSvc.Process, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportQueue.OnFailure(exportSvc.HandleFailure)
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportSvc.SetQueue(exportQueue)
	exportSvc.ResumeQueued(ctx)
	exportSvc.StartCleanup(ctx)

	if cfg.Billing.OverdueSweepEnabled {
		sweeper, err := service.NewOverdueSweeper(billingSvc, cfg.Billing.OverdueSweepCron, cfg.Billing.Location(), logr)
		if err != nil {
			logr.Fatal("invalid overdue sweep schedule", zap.Error(err))
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	if err := authSvc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
		logr.Fatal("failed to bootstrap administrator", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Swagger.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.Register(r, cfg.APIPrefix, router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Settings:      handler.NewSettingsHandler(settingsSvc),
		Students:      handler.NewStudentHandler(studentSvc, authSvc),
		Classes:       handler.NewClassOfferingHandler(classSvc),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentSvc, billingSvc),
		Installments:  handler.NewInstallmentHandler(billingSvc),
		Schedule:      handler.NewScheduleHandler(scheduleSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Exports:       handler.NewExportHandler(exportSvc),
		Me: handler.NewMeHandler(handler.MeDeps{
			Students:      studentSvc,
			Enrollments:   enrollmentSvc,
			Ledger:        billingSvc,
			Schedule:      scheduleSvc,
			Announcements: announcementSvc,
		}),
	}, router.Deps{Tokens: authSvc, Audit: userRepo, Logger: logr})

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

func newExportStore(ctx context.Context, cfg config.ExportsConfig) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverS3:
		return storage.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	case config.StorageDriverLocal, "":
		return storage.NewLocalStorage(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("unknown export storage driver %q", cfg.StorageDriver)
	}
}
