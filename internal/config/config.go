package config

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the todo API service.
type Config struct {
	Addr          string        `env:"ADDR,default=:8080"`
	DBDSN         string        `env:"DB_DSN,required"`
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL,default=24h"`
	CSRFTTL       time.Duration `env:"CSRF_TTL,default=1h"`

	AppBaseURL   string `env:"APP_BASE_URL,default=http://localhost:8080"`
	CookieSecure bool   `env:"COOKIE_SECURE,default=false"`

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM,default=noreply@todoapp.example"`
}

// ErrSecretTooShort rejects session secrets that cannot back an HMAC key.
var ErrSecretTooShort = errors.New("SESSION_SECRET must be at least 32 bytes")

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if len(cfg.SessionSecret) < 32 {
		return Config{}, ErrSecretTooShort
	}
	return cfg, nil
}
