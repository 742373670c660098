package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-sync/internal/adapter/handler"
	"github.com/johnquangdev/meeting-sync/internal/adapter/repository"
	"github.com/johnquangdev/meeting-sync/internal/domain/repositories"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/external/automation"
	httpmw "github.com/johnquangdev/meeting-sync/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/notifier"
	"github.com/johnquangdev/meeting-sync/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-sync/internal/usecase/ingestion"
	"github.com/johnquangdev/meeting-sync/internal/usecase/meetings"
	"github.com/johnquangdev/meeting-sync/internal/usecase/registration"
	"github.com/johnquangdev/meeting-sync/pkg/config"
	"github.com/johnquangdev/meeting-sync/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/meeting-sync/pkg/validator"
)

// @title           Meeting Sync API
// @version         1.0
// @description     Transcript webhook ingestion and per-account meeting listings

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Meeting store
	var (
		accountRepo repositories.AccountRepository
		meetingRepo repositories.MeetingRepository
	)
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("using in-memory meeting store; data is lost on restart")
		mem := repository.NewMemoryStore()
		accountRepo, meetingRepo = mem, mem
	default:
		db, err := database.NewPostgresDB(cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer database.CloseDB(db)

		// Production deployments should run migrations from meetingctl
		if cfg.Database.AutoMigrate {
			if cfg.IsProduction() {
				logger.Fatal("DB_AUTO_MIGRATE is enabled in production; run meetingctl migrate up instead")
			}
			n, err := database.Migrate(db, cfg.Database.Migrations, migrate.Up, 0)
			if err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
			logger.Info("migrations applied", zap.Int("count", n))
		}
		accountRepo = repository.NewAccountRepository(db)
		meetingRepo = repository.NewMeetingRepository(db)
	}

	// Snapshot store
	var snapshots repositories.SnapshotStore
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()
		snapshots = cache.NewRedisSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
	} else {
		snapshots = cache.NewMemorySnapshotStore(cfg.Redis.SnapshotTTL)
	}

	var recorder *metrics.Metrics
	if cfg.Metrics.Enabled {
		recorder = metrics.New(cfg.Metrics.Namespace)
	}

	// Sync events
	broadcaster := notifier.NewBroadcaster(logger)
	defer broadcaster.Close()
	var events ingestion.Notifier
	switch cfg.Notifier.Driver {
	case "memory":
		events = broadcaster
	case "nats":
		nc, err := notifier.Connect(cfg.Notifier.NATSURL, logger)
		if err != nil {
			logger.Fatal("failed to connect to NATS", zap.Error(err))
		}
		defer nc.Drain()
		events = notifier.Fanout{broadcaster, notifier.NewNATSNotifier(nc, cfg.Notifier.SubjectPrefix)}
		logger.Info("publishing sync events", zap.String("subject", notifier.SubjectFor(cfg.Notifier.SubjectPrefix)))
	}

	// Ingestion pipeline
	opts := []ingestion.Option{}
	if events != nil {
		opts = append(opts, ingestion.WithNotifier(events))
	}
	if cfg.Archive.Enabled {
		archive, err := storage.NewPayloadArchive(ctx, &cfg.Archive)
		if err != nil {
			logger.Fatal("failed to initialize payload archive", zap.Error(err))
		}
		opts = append(opts, ingestion.WithArchiver(archive, 5*time.Second))
	}
	ingestRecorder := ingestion.Recorder(nil)
	if recorder != nil {
		ingestRecorder = recorder
	}
	ingestService := ingestion.NewService(
		ingestion.NewPayloadValidator(cfg.Ingestion.AcceptLegacyKey),
		ingestion.NewResolver(accountRepo, cfg.Ingestion.ResolveTimeout, cfg.Ingestion.ResolverCacheTTL, ingestRecorder, logger),
		ingestion.NewWriter(meetingRepo, accountRepo, cfg.Ingestion.WriteTimeout, cfg.Ingestion.WriteConcurrency, ingestRecorder, logger),
		ingestRecorder,
		logger,
		opts...,
	)

	// Read path
	source := meetings.StoreSource(meetingRepo)
	if cfg.ReadPath.Source == "snapshot" {
		source = meetings.SnapshotSource(snapshots)
		if events != nil {
			refresher := meetings.NewSnapshotRefresher(meetingRepo, snapshots, cfg.ReadPath.Timeout, logger)
			ch, cancel := broadcaster.Subscribe(64)
			defer cancel()
			go refresher.Run(ctx, ch)
		} else {
			logger.Warn("snapshot read path without a notifier; snapshots only change through POST /v1/meetings")
		}
	}
	var readRecorder meetings.Recorder
	if recorder != nil {
		readRecorder = recorder
	}
	readService := meetings.NewService(source, snapshots, cfg.ReadPath.Timeout, readRecorder, logger)

	// Registration side-channel
	var regRecorder registration.Recorder
	if recorder != nil {
		regRecorder = recorder
	}
	regService := registration.NewService(
		accountRepo,
		automation.NewClient(cfg.Registration.AutomationURL, cfg.Registration.RequestTimeout),
		automation.IsTemporary,
		cfg.Registration.MaxElapsed,
		regRecorder,
		logger,
	)

	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))

	var metricsHandler http.Handler
	if recorder != nil {
		metricsHandler = recorder.Handler()
	}
	router := handler.NewRouter(cfg,
		handler.NewWebhook(ingestService, logger),
		handler.NewMeetings(readService, logger),
		handler.NewAccounts(regService, accountRepo, logger),
		httpmw.EchoAuth(jwtManager, handler.AuthErrorHandler(logger)),
		metricsHandler,
		logger,
	)
	router.Setup(e)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		logger.Info("starting server",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
			zap.String("db_driver", cfg.Database.Driver),
			zap.String("read_source", cfg.ReadPath.Source),
			zap.String("notifier", cfg.Notifier.Driver),
		)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
