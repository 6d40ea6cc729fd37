package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the chat-api service.
type Config struct {
	// Service settings
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"chat-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"CHAT_API_PORT" envDefault:"8188"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// OpenTelemetry
	EnableTracing bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint  string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`

	// Auth
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`

	// Database
	DatabaseURL    string        `env:"DB_POSTGRESQL_DSN,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// WebSocket
	WSWriteTimeout    time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	WSPongTimeout     time.Duration `env:"WS_PONG_TIMEOUT" envDefault:"60s"`
	WSMaxMessageBytes int64         `env:"WS_MAX_MESSAGE_BYTES" envDefault:"65536"`
	WSSendBuffer      int           `env:"WS_SEND_BUFFER" envDefault:"64"`

	// Message history
	HistoryDefaultLimit int `env:"HISTORY_DEFAULT_LIMIT" envDefault:"50"`
	HistoryMaxLimit     int `env:"HISTORY_MAX_LIMIT" envDefault:"200"`

	// Object storage (S3-compatible, presigned uploads)
	S3Endpoint     string        `env:"CHAT_S3_ENDPOINT"`
	S3Region       string        `env:"CHAT_S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string        `env:"CHAT_S3_BUCKET"`
	S3AccessKeyID  string        `env:"CHAT_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"CHAT_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"CHAT_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PublicURL    string        `env:"CHAT_S3_PUBLIC_URL"`
	S3PresignTTL   time.Duration `env:"CHAT_S3_PRESIGN_TTL" envDefault:"15m"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3PublicURL = strings.TrimRight(strings.TrimSpace(cfg.S3PublicURL), "/")

	if cfg.AuthEnabled {
		if strings.TrimSpace(cfg.AuthIssuer) == "" {
			return nil, fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(cfg.AuthJWKSURL) == "" {
			return nil, fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}

	if cfg.HistoryDefaultLimit <= 0 {
		cfg.HistoryDefaultLimit = 50
	}
	if cfg.HistoryMaxLimit < cfg.HistoryDefaultLimit {
		cfg.HistoryMaxLimit = cfg.HistoryDefaultLimit
	}

	return cfg, nil
}

// Addr returns the HTTP server address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
