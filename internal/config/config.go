package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Source site
	StatsBaseURL         string        `envconfig:"STATS_BASE_URL" default:"https://www.fantasypros.com/nfl/stats"`
	SourceTimeout        time.Duration `envconfig:"SOURCE_TIMEOUT" default:"30s"`
	SourceMaxConcurrency int           `envconfig:"SOURCE_MAX_CONCURRENCY" default:"10"`
	SourceMaxRetries     int           `envconfig:"SOURCE_MAX_RETRIES" default:"3"`
	SourceUserAgent      string        `envconfig:"SOURCE_USER_AGENT" default:"Mozilla/5.0 (X11; Linux x86_64) draft-board-ingestion/2.0"`

	// Headless browser used for the client-rendered rankings tables
	ChromeRemoteURL      string        `envconfig:"CHROME_REMOTE_URL" default:""`
	ChromeIdleTimeout    time.Duration `envconfig:"CHROME_IDLE_TIMEOUT" default:"10m"`
	RenderTimeout        time.Duration `envconfig:"RENDER_TIMEOUT" default:"90s"`
	RankingsDetailedView bool          `envconfig:"RANKINGS_DETAILED_VIEW" default:"true"`

	// Pipeline
	BioWorkers         int  `envconfig:"BIO_WORKERS" default:"5"`
	PipelineSequential bool `envconfig:"PIPELINE_SEQUENTIAL" default:"false"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"fantasy_football"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"fantasy_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching TTL
	CacheTTLLastRun time.Duration `envconfig:"CACHE_TTL_LAST_RUN" default:"1h"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Admin API
	IngestionPort int `envconfig:"INGESTION_PORT" default:"8080"`

	// Scheduler
	EnableScheduler    bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	NightlyRefreshCron string `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`

	// DynamoDB snapshot mirror
	DynamoExportEnabled bool   `envconfig:"DYNAMO_EXPORT_ENABLED" default:"false"`
	DynamoTable         string `envconfig:"DYNAMO_TABLE" default:"fantasy_players"`
	AWSRegion           string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.BioWorkers < 1 {
		return fmt.Errorf("BIO_WORKERS must be at least 1, got %d", c.BioWorkers)
	}

	if c.SourceMaxConcurrency < 1 {
		return fmt.Errorf("SOURCE_MAX_CONCURRENCY must be at least 1, got %d", c.SourceMaxConcurrency)
	}

	if c.SourceMaxRetries < 0 {
		return fmt.Errorf("SOURCE_MAX_RETRIES cannot be negative")
	}

	if c.EnableScheduler && c.NightlyRefreshCron == "" {
		return fmt.Errorf("NIGHTLY_REFRESH_CRON is required when the scheduler is enabled")
	}

	if c.DynamoExportEnabled && c.DynamoTable == "" {
		return fmt.Errorf("DYNAMO_TABLE is required when DYNAMO_EXPORT_ENABLED is set")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
