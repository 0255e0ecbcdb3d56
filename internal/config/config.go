package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	LogLevel    string
	API         APIConfig
	Storage     StorageConfig
	CatalogFile string // CATALOG_FILE: YAML catalog replacing the embedded one
	MockBackend MockBackendConfig
}

// APIConfig points the storefront at the remote backend
type APIConfig struct {
	BaseURL string        // STOREFRONT_API_URL, e.g. http://localhost:5000
	Timeout time.Duration // HTTP_TIMEOUT; 0 means no client timeout
}

// StorageConfig selects where cart, wishlist, draft and session are kept
type StorageConfig struct {
	Backend  string // file, redis or memory
	StateDir string // used by the file backend
	Redis    RedisConfig
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// MockBackendConfig configures the local development backend (cmd/mock-backend)
type MockBackendConfig struct {
	Port          string
	JWTSecret     string
	Driver        string // memory or postgres
	Database      DatabaseConfig
	AdminEmail    string
	AdminPassword string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

const (
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageMemory = "memory"

	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

func Load() (*Config, error) {
	// Populate the process environment from .env when present; real env vars win.
	_ = godotenv.Load()

	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STOREFRONT_API_URL", "http://localhost:5000")
	viper.SetDefault("HTTP_TIMEOUT", "30s")
	viper.SetDefault("STORAGE_BACKEND", StorageFile)
	viper.SetDefault("PORT", "5000")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("HTTP_TIMEOUT is not a duration: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL: strings.TrimSuffix(strings.TrimSpace(getEnvOrViper("STOREFRONT_API_URL", "http://localhost:5000")), "/"),
			Timeout: timeout,
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(getEnvOrViper("STORAGE_BACKEND", StorageFile)),
			StateDir: getEnvOrViper("STATE_DIR", defaultStateDir()),
			Redis: RedisConfig{
				Addr:      strings.TrimSpace(getEnvOrViper("REDIS_ADDR", "")),
				Password:  getEnvOrViper("REDIS_PASSWORD", ""),
				DB:        redisDB,
				KeyPrefix: getEnvOrViper("REDIS_KEY_PREFIX", "storefront:"),
			},
		},
		CatalogFile: strings.TrimSpace(getEnvOrViper("CATALOG_FILE", "")),
		MockBackend: MockBackendConfig{
			Port:      getEnvOrViper("PORT", "5000"),
			JWTSecret: getEnvOrViper("JWT_SECRET", "dev-secret-change-me"),
			Driver:    strings.ToLower(getEnvOrViper("MOCK_DB_DRIVER", DriverMemory)),
			Database: DatabaseConfig{
				Host:     getEnvOrViper("DB_HOST", ""),
				Port:     getEnvOrViper("DB_PORT", "5432"),
				User:     getEnvOrViper("DB_USER", "postgres"),
				Password: getEnvOrViper("DB_PASSWORD", "postgres"),
				DBName:   getEnvOrViper("DB_NAME", "storefront"),
				SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
			},
			AdminEmail:    getEnvOrViper("ADMIN_EMAIL", "admin@jerseyshop.local"),
			AdminPassword: getEnvOrViper("ADMIN_PASSWORD", "admin1234"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combination of settings
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("STOREFRONT_API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	switch c.Storage.Backend {
	case StorageFile:
		if c.Storage.StateDir == "" {
			return fmt.Errorf("STATE_DIR is required for the file storage backend")
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis storage backend")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.MockBackend.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.MockBackend.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required when MOCK_DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown MOCK_DB_DRIVER %q", c.MockBackend.Driver)
	}
	return nil
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".jersey-storefront"
	}
	return filepath.Join(home, ".jersey-storefront")
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
