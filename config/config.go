package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Price       PriceConfig
	Auth        AuthConfig
	Transaction TransactionConfig
	Alerts      AlertsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	LogLevel    string
}

func (a AppConfig) Development() bool {
	return a.Environment == "development"
}

type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Path string
}

type PriceConfig struct {
	Provider        string // "coingecko" or "mock"
	Currency        string
	CacheTTL        time.Duration
	RequestTimeout  time.Duration
	RateLimitRPS    int
	CoinGeckoAPIKey string
	CoinGeckoURL    string
	FallbackEnabled bool
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type TransactionConfig struct {
	RequestTimeout time.Duration
	StrictHistory  bool
}

type AlertsConfig struct {
	Enabled  bool
	Schedule string
}

// Load reads an optional .env file and then builds the configuration from
// environment variables. Variables already set in the environment win.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// a missing .env is normal outside local development
		_ = godotenv.Load(f)
	}

	return &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "cryptotrack"),
			Environment: getEnv("APP_ENV", "production"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnv("SERVER_PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "cryptotrack.db"),
		},
		Price: PriceConfig{
			Provider:        getEnv("PRICE_PROVIDER", "coingecko"),
			Currency:        getEnv("PRICE_CURRENCY", "usd"),
			CacheTTL:        getDurationEnv("PRICE_CACHE_TTL", 60*time.Second),
			RequestTimeout:  getDurationEnv("PRICE_REQUEST_TIMEOUT", 10*time.Second),
			RateLimitRPS:    getIntEnv("PRICE_RATE_LIMIT_RPS", 10),
			CoinGeckoAPIKey: getEnv("COINGECKO_API_KEY", ""),
			CoinGeckoURL:    getEnv("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
			FallbackEnabled: getBoolEnv("PRICE_FALLBACK_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getDurationEnv("JWT_TTL", 24*time.Hour),
			BcryptCost: getIntEnv("BCRYPT_COST", 10),
		},
		Transaction: TransactionConfig{
			RequestTimeout: getDurationEnv("TRANSACTION_REQUEST_TIMEOUT", 10*time.Second),
			StrictHistory:  getBoolEnv("TRANSACTION_STRICT_HISTORY", false),
		},
		Alerts: AlertsConfig{
			Enabled:  getBoolEnv("ALERTS_ENABLED", true),
			Schedule: getEnv("ALERTS_SCHEDULE", "@every 1m"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT must be set"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("DATABASE_PATH must be set"))
	}
	switch strings.ToLower(c.Price.Provider) {
	case "coingecko", "mock":
	default:
		errs = append(errs, fmt.Errorf("PRICE_PROVIDER must be coingecko or mock, got %q", c.Price.Provider))
	}
	if c.Price.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("PRICE_RATE_LIMIT_RPS must be positive"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Alerts.Enabled && c.Alerts.Schedule == "" {
		errs = append(errs, errors.New("ALERTS_SCHEDULE must be set when alerts are enabled"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
