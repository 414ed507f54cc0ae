package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the collector
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data provider
	Polygon PolygonConfig

	// Object storage
	Storage StorageConfig

	// Universe (subgroup + index ticker lists)
	UniverseFile string

	// Pacing between provider calls
	Pacing PacingConfig

	// Redis (shared pacing only)
	Redis RedisConfig

	// Database (optional universe source)
	Database DatabaseConfig

	// Scheduling
	CollectSchedule string
	MarketTimezone  string
	MarketCalendar  string // exchange MIC for holiday filtering, empty = weekdays only

	// Logging
	LogLevel  string
	LogFormat string
}

// PolygonConfig holds Polygon.io REST configuration
type PolygonConfig struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Backend      string // s3, file
	Bucket       string
	Region       string
	Endpoint     string // S3 compatible endpoint override (MinIO 등)
	UsePathStyle bool
	AccessKeyID  string
	SecretKey    string
	Dir          string // file backend root
}

// PacingConfig holds the fixed delays applied before each provider call
type PacingConfig struct {
	Mode           string // fixed, bucket, redis
	AggregateDelay time.Duration
	DetailsDelay   time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Polygon: PolygonConfig{
			APIKey:      getEnv("POLYGON_API_KEY", ""),
			BaseURL:     getEnv("POLYGON_BASE_URL", "https://api.polygon.io"),
			HTTPTimeout: getEnvAsDuration("HTTP_TIMEOUT", "30s"),
		},

		Storage: StorageConfig{
			Backend:      getEnv("STORAGE_BACKEND", "s3"),
			Bucket:       getEnv("DATA_BUCKET", ""),
			Region:       getEnv("AWS_REGION", "us-east-1"),
			Endpoint:     getEnv("S3_ENDPOINT", ""),
			UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false),
			AccessKeyID:  getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Dir:          getEnv("STORAGE_DIR", "data"),
		},

		UniverseFile: getEnv("UNIVERSE_FILE", ""),

		Pacing: PacingConfig{
			Mode:           getEnv("PACING_MODE", "fixed"),
			AggregateDelay: getEnvAsDuration("AGGREGATE_DELAY", "500ms"),
			DetailsDelay:   getEnvAsDuration("DETAILS_DELAY", "1s"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// 미국장 마감 후 (ET 06:00, 화-토) 전일 데이터 수집
		CollectSchedule: getEnv("COLLECT_SCHEDULE", "0 0 6 * * TUE-SAT"),
		MarketTimezone:  getEnv("MARKET_TIMEZONE", "America/New_York"),
		MarketCalendar:  getEnv("MARKET_CALENDAR", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Outside development the provider key is mandatory
	if c.Env != "development" && c.Polygon.APIKey == "" {
		return fmt.Errorf("POLYGON_API_KEY is required")
	}

	switch c.Storage.Backend {
	case "s3":
		if c.Env != "development" && c.Storage.Bucket == "" {
			return fmt.Errorf("DATA_BUCKET is required for the s3 storage backend")
		}
	case "file":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: s3, file")
	}

	switch c.Pacing.Mode {
	case "fixed", "bucket":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("PACING_MODE=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("PACING_MODE must be one of: fixed, bucket, redis")
	}

	if c.Pacing.AggregateDelay < 0 || c.Pacing.DetailsDelay < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}

	return nil
}

// LoadEnvFile loads an explicit .env file; values already set in the
// environment win, same as the implicit lookup in Load
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
