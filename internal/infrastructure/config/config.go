package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// PublicURL is the externally visible origin, used to build the OAuth
	// callback URL.
	PublicURL string `env:"PUBLIC_URL, default=http://localhost:8080"`

	Session  SessionConfig
	Booking  BookingConfig
	Supabase SupabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Resend   ResendConfig

	CORSOrigins  []string `env:"CORS_ORIGINS"`
	AuditWorkers int      `env:"AUDIT_WORKERS, default=4"`
}

type SessionConfig struct {
	// Secret signs the session cookie.
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,   default=168h"`
	CookieSecure bool          `env:"COOKIE_SECURE, default=false"`
}

type BookingConfig struct {
	// RedirectDelay is how long the booking confirmation stays on screen
	// before the browser moves on to the booking list.
	RedirectDelay time.Duration `env:"BOOKING_REDIRECT_DELAY, default=3s"`
}

type SupabaseConfig struct {
	URL     string        `env:"SUPABASE_URL"`
	AnonKey string        `env:"SUPABASE_ANON_KEY"`
	Timeout time.Duration `env:"SUPABASE_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=carwash"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// ResendConfig enables forwarding contact messages by email. Leaving APIKey
// empty disables forwarding.
type ResendConfig struct {
	APIKey string `env:"RESEND_API_KEY"`
	From   string `env:"RESEND_FROM,   default=WashHub <noreply@washhub.app>"`
	Inbox  string `env:"CONTACT_INBOX"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}
	if c.Resend.APIKey != "" && c.Resend.Inbox == "" {
		errs = append(errs, errors.New("CONTACT_INBOX is required when RESEND_API_KEY is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the app runs in a local development setup.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// CallbackURL is the absolute URL the OAuth provider redirects back to.
func (c *Config) CallbackURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/auth/callback"
}
