package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Store    StoreConfig
	Auth     AuthConfig
	Tasks    TasksConfig
}

// ServiceConfig holds HTTP service settings
type ServiceConfig struct {
	Port           int
	Environment    string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
}

// DatabaseConfig holds the identity registry connection settings
type DatabaseConfig struct {
	Driver       string // "postgres" or "sqlite"
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig holds queue store connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StoreConfig controls the queue store backend
type StoreConfig struct {
	Backend      string // "redis" or "memory"
	MaxRetries   int    // optimistic transaction retries before ConcurrentModification
	CodeAttempts int    // queue code generation attempts before giving up
}

// AuthConfig holds token settings
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TasksConfig holds cron specs for background jobs. Empty spec disables the job.
type TasksConfig struct {
	ReconcileSpec    string
	AutoDispatchSpec string
}

// LoadEnvFile loads .env unless ENV_CHEK is set, the way deployments inject
// variables directly.
func LoadEnvFile(paths ...string) error {
	if os.Getenv("ENV_CHEK") != "" {
		return nil
	}
	return godotenv.Load(paths...)
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Port:           getEnvInt("PORT", 8080),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "text"),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "postgres"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "queuely"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "queuely"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "queuely.db"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Store: StoreConfig{
			Backend:      getEnv("STORE_BACKEND", "redis"),
			MaxRetries:   getEnvInt("STORE_MAX_RETRIES", 8),
			CodeAttempts: getEnvInt("CODE_ATTEMPTS", 16),
		},
		Auth: AuthConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
			AccessTTL:     getEnvDuration("JWT_ACCESS_TTL", 30*time.Minute),
			RefreshTTL:    getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
		},
		Tasks: TasksConfig{
			ReconcileSpec:    getEnv("RECONCILE_SPEC", "0 */10 * * * *"),
			AutoDispatchSpec: getEnv("AUTO_DISPATCH_SPEC", "*/30 * * * * *"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if c.Service.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Store.Backend {
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported store backend: %q", c.Store.Backend)
	}

	if c.Store.MaxRetries < 1 {
		return fmt.Errorf("store max retries must be >= 1")
	}

	if c.Store.CodeAttempts < 1 {
		return fmt.Errorf("code attempts must be >= 1")
	}

	if c.Auth.AccessSecret == "" || c.Auth.RefreshSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET are required")
	}

	return nil
}

// DSN returns the Postgres connection string in the key=value form gorm's driver expects
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Service.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
