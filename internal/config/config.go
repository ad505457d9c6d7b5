package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Redis    RedisConfig
	Cron     CronConfig
	Seed     SeedConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// StripeConfig holds checkout configuration
type StripeConfig struct {
	SecretKey   string
	ClientURL   string
	FeeCents    int64
	FeeCurrency string
}

// RedisConfig holds the optional rate-limit store
type RedisConfig struct {
	URL      string
	Password string
}

// CronConfig holds scheduled job configuration
type CronConfig struct {
	DailyReportSpec string
}

// SeedConfig holds the optional bootstrap admin
type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	envFileErr := godotenv.Load()

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	stripeCfg, err := loadStripeConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Stripe:   stripeCfg,
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Cron: CronConfig{
			DailyReportSpec: getEnv("DAILY_REPORT_SPEC", "30 8 * * *"),
		},
		Seed: SeedConfig{
			AdminEmail:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	if appMode == "prod" && config.JWT.Secret == defaultJWTSecret {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}
	if envFileErr != nil && appMode == "dev" {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "micro_loan"),
	}
}

const defaultJWTSecret = "default_secret"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))

	return JWTConfig{
		Secret:          getEnv(modePrefix(mode)+"JWT_SECRET", defaultJWTSecret),
		AccessTokenMins: accessMins,
	}
}

func loadStripeConfig() (StripeConfig, error) {
	fee, err := strconv.ParseInt(getEnv("APPLICATION_FEE_CENTS", "1000"), 10, 64)
	if err != nil || fee <= 0 {
		return StripeConfig{}, fmt.Errorf("invalid APPLICATION_FEE_CENTS: %q", os.Getenv("APPLICATION_FEE_CENTS"))
	}

	return StripeConfig{
		SecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		ClientURL:   strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/"),
		FeeCents:    fee,
		FeeCurrency: strings.ToLower(getEnv("APPLICATION_FEE_CURRENCY", "usd")),
	}, nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return c.Stripe.ClientURL
	}
	return origins
}
