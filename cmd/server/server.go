// @title           Chat API
// @version         1.0
// @description     Realtime chat relay service.
// @description     Relays chat messages, typing indicators and WebRTC call signaling over WebSocket.

// @host      localhost:8188
// @BasePath  /

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description JWT Bearer token

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/joho/godotenv"

	"nexuschat/chat-api/internal/config"
	"nexuschat/chat-api/internal/domain/relay"
	"nexuschat/chat-api/internal/infrastructure/auth"
	"nexuschat/chat-api/internal/infrastructure/database"
	"nexuschat/chat-api/internal/infrastructure/logger"
	"nexuschat/chat-api/internal/infrastructure/observability"
	"nexuschat/chat-api/internal/infrastructure/repository/chatrepo"
	"nexuschat/chat-api/internal/infrastructure/storage"
	"nexuschat/chat-api/internal/interfaces/httpserver"
	"nexuschat/chat-api/internal/interfaces/wsgateway"
)

const dbPingInterval = 30 * time.Second

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	db         *gorm.DB
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, db *gorm.DB, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		db:         db,
		log:        log,
	}
}

// Start runs the application until the context is cancelled.
func (a *Application) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.httpServer.Run(ctx)
	})
	g.Go(func() error {
		a.watchDatabase(ctx)
		return nil
	})

	return g.Wait()
}

// watchDatabase pings the connection pool periodically so pool exhaustion or
// a dropped database shows up in the logs before users report it.
func (a *Application) watchDatabase(ctx context.Context) {
	ticker := time.NewTicker(dbPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sqlDB, err := a.db.DB()
			if err != nil {
				a.log.Error().Err(err).Msg("database handle unavailable")
				continue
			}
			if err := sqlDB.PingContext(ctx); err != nil && ctx.Err() == nil {
				a.log.Error().Err(err).Msg("database ping failed")
			}
		}
	}
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormLogLevel(cfg),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	s3Storage, err := storage.NewS3Storage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	store := chatrepo.NewRepository(db)
	relayService := relay.NewService(relay.NewState(log), store, log)
	gateway := wsgateway.New(cfg, relayService, authValidator, log)
	httpServer := httpserver.New(cfg, log, store, s3Storage, gateway, authValidator)

	app := NewApplication(httpServer, db, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func gormLogLevel(cfg *config.Config) gormlogger.LogLevel {
	if cfg.Environment == "development" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
