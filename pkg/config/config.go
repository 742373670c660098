package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Ingestion    IngestionConfig
	ReadPath     ReadPathConfig
	JWT          JWTConfig
	Notifier     NotifierConfig
	Archive      ArchiveConfig
	Registration RegistrationConfig
	Metrics      MetricsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"` // "postgres" or "memory"
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_sync"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	Migrations  string `envconfig:"DB_MIGRATIONS_DIR" default:"migrations"`
}

// RedisConfig holds Redis configuration. An empty host keeps snapshots in memory.
type RedisConfig struct {
	Host        string        `envconfig:"REDIS_HOST" default:""`
	Port        string        `envconfig:"REDIS_PORT" default:"6379"`
	Password    string        `envconfig:"REDIS_PASSWORD" default:""`
	DB          int           `envconfig:"REDIS_DB" default:"0"`
	SnapshotTTL time.Duration `envconfig:"REDIS_SNAPSHOT_TTL" default:"24h"`
}

// IngestionConfig holds webhook pipeline settings
type IngestionConfig struct {
	ResolveTimeout   time.Duration `envconfig:"INGESTION_RESOLVE_TIMEOUT" default:"5s"`
	WriteTimeout     time.Duration `envconfig:"INGESTION_WRITE_TIMEOUT" default:"10s"`
	ResolverCacheTTL time.Duration `envconfig:"INGESTION_RESOLVER_CACHE_TTL" default:"30s"`
	MaxBodyBytes     string        `envconfig:"INGESTION_MAX_BODY" default:"1M"`
	WriteConcurrency int           `envconfig:"INGESTION_WRITE_CONCURRENCY" default:"8"`
	AcceptLegacyKey  bool          `envconfig:"INGESTION_ACCEPT_LEGACY_KEY" default:"true"`
	WebhookSecret    string        `envconfig:"INGESTION_WEBHOOK_SECRET" default:""` // empty disables signature checks
	SignatureHeader  string        `envconfig:"INGESTION_SIGNATURE_HEADER" default:"X-Webhook-Signature"`
}

// ReadPathConfig selects the primary source for client reads
type ReadPathConfig struct {
	Source  string        `envconfig:"READ_PATH_SOURCE" default:"store"` // "store" or "snapshot"
	Timeout time.Duration `envconfig:"READ_PATH_TIMEOUT" default:"5s"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	AccessExpiry time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"24h"`
}

// NotifierConfig holds push notification settings
type NotifierConfig struct {
	Driver        string `envconfig:"NOTIFIER_DRIVER" default:"memory"` // "none", "memory" or "nats"
	NATSURL       string `envconfig:"NATS_URL" default:"nats://localhost:4222"`
	SubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"meetings"`
}

// ArchiveConfig holds raw payload archive settings
type ArchiveConfig struct {
	Enabled         bool   `envconfig:"ARCHIVE_ENABLED" default:"false"`
	Endpoint        string `envconfig:"ARCHIVE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"ARCHIVE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"ARCHIVE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"ARCHIVE_BUCKET" default:"meeting-sync-webhooks"`
	UseSSL          bool   `envconfig:"ARCHIVE_USE_SSL" default:"false"`
}

// RegistrationConfig holds the automation webhook settings
type RegistrationConfig struct {
	AutomationURL  string        `envconfig:"REGISTRATION_AUTOMATION_URL" default:""`
	RequestTimeout time.Duration `envconfig:"REGISTRATION_REQUEST_TIMEOUT" default:"10s"`
	MaxElapsed     time.Duration `envconfig:"REGISTRATION_MAX_ELAPSED" default:"30s"`
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"meeting_sync"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	// Sections are processed one by one so keys stay unprefixed (PORT, not SERVER_PORT)
	sections := []interface{}{
		&cfg.Server,
		&cfg.Database,
		&cfg.Redis,
		&cfg.Ingestion,
		&cfg.ReadPath,
		&cfg.JWT,
		&cfg.Notifier,
		&cfg.Archive,
		&cfg.Registration,
		&cfg.Metrics,
	}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("failed to process environment: %w", err)
		}
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Environment == "production" && (c.JWT.AccessSecret == "" || c.JWT.AccessSecret == "your-access-secret-change-in-production") {
		return fmt.Errorf("JWT_ACCESS_SECRET must be set in production")
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, memory (got %q)", c.Database.Driver)
	}
	switch c.ReadPath.Source {
	case "store", "snapshot":
	default:
		return fmt.Errorf("READ_PATH_SOURCE must be one of store, snapshot (got %q)", c.ReadPath.Source)
	}
	switch c.Notifier.Driver {
	case "none", "memory", "nats":
	default:
		return fmt.Errorf("NOTIFIER_DRIVER must be one of none, memory, nats (got %q)", c.Notifier.Driver)
	}
	if c.Archive.Enabled && c.Archive.BucketName == "" {
		return fmt.Errorf("ARCHIVE_BUCKET is required when ARCHIVE_ENABLED is set")
	}
	if c.Ingestion.ResolveTimeout <= 0 || c.Ingestion.WriteTimeout <= 0 {
		return fmt.Errorf("ingestion timeouts must be positive")
	}
	if c.ReadPath.Timeout <= 0 {
		return fmt.Errorf("READ_PATH_TIMEOUT must be positive")
	}
	if c.Registration.MaxElapsed <= 0 {
		return fmt.Errorf("REGISTRATION_MAX_ELAPSED must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
