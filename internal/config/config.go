package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// External API settings
	DataSource         string `envconfig:"DATA_SOURCE" default:"FootballAPI"`
	APIFootballKey     string `envconfig:"API_FOOTBALL_KEY"`
	APIFootballBaseURL string `envconfig:"API_FOOTBALL_BASE_URL" default:"https://v3.football.api-sports.io"`

	FootballDataKey     string `envconfig:"FOOTBALL_DATA_KEY"`
	FootballDataBaseURL string `envconfig:"FOOTBALL_DATA_BASE_URL" default:"https://api.football-data.org/v4"`

	// Rate limits (requests per window)
	APIFootballDailyLimit   int           `envconfig:"API_FOOTBALL_DAILY_LIMIT" default:"100"`
	FootballDataMinuteLimit int           `envconfig:"FOOTBALL_DATA_MINUTE_LIMIT" default:"10"`
	RequestTimeout          time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// Response cache TTLs
	CacheTTLLeagues   time.Duration `envconfig:"CACHE_TTL_LEAGUES" default:"24h"`
	CacheTTLTeams     time.Duration `envconfig:"CACHE_TTL_TEAMS" default:"24h"`
	CacheTTLStandings time.Duration `envconfig:"CACHE_TTL_STANDINGS" default:"1h"`
	CacheTTLFixtures  time.Duration `envconfig:"CACHE_TTL_FIXTURES" default:"1h"`
	CacheTTLFixture   time.Duration `envconfig:"CACHE_TTL_FIXTURE" default:"30m"`
	CacheTTLTeamStats time.Duration `envconfig:"CACHE_TTL_TEAM_STATS" default:"24h"`

	// Database settings
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"footysync"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Redis settings
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Scheduler settings
	DailySyncCron    string        `envconfig:"DAILY_SYNC_CRON" default:"0 6 * * *"`
	LivePollInterval time.Duration `envconfig:"LIVE_POLL_INTERVAL" default:"5m"`
	SyncDaysAhead    int           `envconfig:"SYNC_DAYS_AHEAD" default:"7"`

	// Server settings
	MetricsPort int    `envconfig:"METRICS_PORT" default:"9090"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if present (development convenience)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return cfg
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.APIFootballKey == "" && c.FootballDataKey == "" {
		return fmt.Errorf("at least one provider API key is required (API_FOOTBALL_KEY or FOOTBALL_DATA_KEY)")
	}
	if c.DBPassword == "" && c.Environment == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
