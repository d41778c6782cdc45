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

const devJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	PayPal   PayPalConfig
	Strapi   StrapiConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                   string
	Env                    string
	Host                   string
	Port                   string
	Version                string
	PublicOrigin           string
	RoutePrefix            string
	RequestTimeoutSeconds  int
	OutboundTimeoutSeconds int
}

// PostgresConfig holds DB connection values for the orphan ledger.
type PostgresConfig struct {
	DSN                 string
	MaxConns            int32
	MinConns            int32
	RunMigrations       bool
	ConnMaxIdleSec      int32
	ConnMaxLifeSec      int32
	OrphanReportMinutes int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig defines token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	RefreshTokenTTLHours  int
	RefreshCookieName     string
}

// PayPalConfig holds the payment provider credentials.
type PayPalConfig struct {
	APIURL       string
	ClientID     string
	ClientSecret string
	PlanID       string
	BrandName    string
}

// StrapiConfig holds the CMS backend connection values.
type StrapiConfig struct {
	APIOrigin      string
	APIToken       string
	IdentifierMode string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                   getEnv("APP_NAME", "page-for-artists"),
			Env:                    getEnv("APP_ENV", "development"),
			Host:                   getEnv("APP_HOST", "0.0.0.0"),
			Port:                   getEnv("APP_PORT", "8080"),
			Version:                getEnv("APP_VERSION", "dev"),
			PublicOrigin:           strings.TrimRight(getEnv("PUBLIC_ORIGIN", getEnv("URL", "http://localhost:8080")), "/"),
			RoutePrefix:            getEnv("APP_ROUTE_PREFIX", "/.netlify/functions"),
			RequestTimeoutSeconds:  getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			OutboundTimeoutSeconds: getEnvAsInt("HTTP_OUTBOUND_TIMEOUT_SECONDS", 10),
		},
		Postgres: PostgresConfig{
			DSN:                 os.Getenv("POSTGRES_DSN"),
			MaxConns:            int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:            int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:       getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:      int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:      int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			OrphanReportMinutes: getEnvAsInt("ORPHAN_REPORT_INTERVAL_MINUTES", 60),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", getEnv("JWT_SECRET", devJWTSecret)),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 15),
			RefreshTokenTTLHours:  getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_HOURS", 24*7),
			RefreshCookieName:     getEnv("AUTH_REFRESH_COOKIE_NAME", "refreshToken"),
		},
		PayPal: PayPalConfig{
			APIURL:       strings.TrimRight(getEnv("PAYPAL_API_URL", "https://api-m.sandbox.paypal.com"), "/"),
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			PlanID:       os.Getenv("PAYPAL_PLAN_ID"),
			BrandName:    getEnv("PAYPAL_BRAND_NAME", "Artist Landing Page"),
		},
		Strapi: StrapiConfig{
			APIOrigin:      strings.TrimRight(os.Getenv("STRAPI_API_ORIGIN"), "/"),
			APIToken:       os.Getenv("STRAPI_API_TOKEN"),
			IdentifierMode: getEnv("STRAPI_IDENTIFIER_MODE", "document_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	switch c.Strapi.IdentifierMode {
	case "document_id", "id":
	default:
		return fmt.Errorf("invalid STRAPI_IDENTIFIER_MODE %q", c.Strapi.IdentifierMode)
	}
	if !c.App.IsProduction() {
		return nil
	}
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || secret == devJWTSecret {
		return errors.New("AUTH_JWT_SECRET must be set in production")
	}
	if c.PayPal.ClientID == "" || c.PayPal.ClientSecret == "" || c.PayPal.PlanID == "" {
		return errors.New("PAYPAL_CLIENT_ID, PAYPAL_CLIENT_SECRET and PAYPAL_PLAN_ID must be set in production")
	}
	if c.Strapi.APIOrigin == "" || c.Strapi.APIToken == "" {
		return errors.New("STRAPI_API_ORIGIN and STRAPI_API_TOKEN must be set in production")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLHours) * time.Hour
}

// OrphanReportInterval is how often unresolved orphans are logged; zero disables it.
func (p PostgresConfig) OrphanReportInterval() time.Duration {
	if p.OrphanReportMinutes <= 0 {
		return 0
	}
	return time.Duration(p.OrphanReportMinutes) * time.Minute
}

// OutboundTimeout bounds every call to PayPal or Strapi.
func (a AppConfig) OutboundTimeout() time.Duration {
	if a.OutboundTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.OutboundTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
