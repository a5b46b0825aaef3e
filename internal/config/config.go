package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/MrValraven/greendash-core/pkg/config"
)

const defaultSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the account service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"AUTH_HTTP_PORT" envDefault:"8080"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"greendash"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"greendash_secret"`
	PostgresDB   string `env:"AUTH_DB_NAME" envDefault:"auth_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Token secrets, one per purpose. A token signed for one purpose can
	// never verify under another even if the TTLs align.
	AccessTokenSecret        string `env:"AUTH_ACCESS_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	RefreshTokenSecret       string `env:"AUTH_REFRESH_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	VerifyEmailTokenSecret   string `env:"AUTH_VERIFY_EMAIL_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	PasswordResetTokenSecret string `env:"AUTH_PASSWORD_RESET_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`

	// Token lifetimes
	AccessTokenTTL        time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL       time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"168h"`
	VerifyEmailTokenTTL   time.Duration `env:"AUTH_VERIFY_EMAIL_TOKEN_TTL" envDefault:"24h"`
	PasswordResetTokenTTL time.Duration `env:"AUTH_PASSWORD_RESET_TOKEN_TTL" envDefault:"1h"`

	// Policy
	RequireVerifiedEmail bool `env:"AUTH_REQUIRE_VERIFIED_EMAIL" envDefault:"false"`

	// Cookies
	CookieSecure bool `env:"AUTH_COOKIE_SECURE" envDefault:"false"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/v1/auth/oauth/google/callback"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load auth config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	for _, ttl := range []struct {
		name string
		d    time.Duration
	}{
		{"AUTH_ACCESS_TOKEN_TTL", cfg.AccessTokenTTL},
		{"AUTH_REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL},
		{"AUTH_VERIFY_EMAIL_TOKEN_TTL", cfg.VerifyEmailTokenTTL},
		{"AUTH_PASSWORD_RESET_TOKEN_TTL", cfg.PasswordResetTokenTTL},
	} {
		if ttl.d <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %s", ttl.name, ttl.d)
		}
	}

	// In non-development environments, require explicitly set strong secrets.
	if cfg.Environment != "development" {
		for _, secret := range []struct {
			name  string
			value string
		}{
			{"AUTH_ACCESS_TOKEN_SECRET", cfg.AccessTokenSecret},
			{"AUTH_REFRESH_TOKEN_SECRET", cfg.RefreshTokenSecret},
			{"AUTH_VERIFY_EMAIL_TOKEN_SECRET", cfg.VerifyEmailTokenSecret},
			{"AUTH_PASSWORD_RESET_TOKEN_SECRET", cfg.PasswordResetTokenSecret},
		} {
			if secret.value == defaultSecret {
				return nil, fmt.Errorf("%s must be explicitly set via environment variable in %q mode", secret.name, cfg.Environment)
			}
			if len(secret.value) < 32 {
				return nil, fmt.Errorf("%s must be at least 32 characters long, got %d", secret.name, len(secret.value))
			}
		}
		if !cfg.CookieSecure {
			return nil, fmt.Errorf("AUTH_COOKIE_SECURE must be enabled in %q mode", cfg.Environment)
		}
	}

	return cfg, nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}
