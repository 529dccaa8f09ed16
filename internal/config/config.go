// Package config loads the job's configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/olmmcc/emaild/pkg/db"
	"github.com/olmmcc/emaild/pkg/logger"
	"github.com/olmmcc/emaild/pkg/mailer"
	"github.com/olmmcc/emaild/pkg/mailer/gmail"
	"github.com/olmmcc/emaild/pkg/mailer/resend"
	"github.com/olmmcc/emaild/pkg/oauth"
	"github.com/olmmcc/emaild/pkg/redis"
)

var (
	ErrLoadEnvFile   = errors.New("config: failed to load env file")
	ErrParse         = errors.New("config: failed to parse environment")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// App holds job-level settings.
type App struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Timezone is the IANA zone "today" is evaluated in. "Local" uses the
	// host zone.
	Timezone string `env:"EMAILD_TIMEZONE" envDefault:"Local"`

	// Schedule is a five-field cron expression. Empty runs once and exits.
	Schedule string `env:"EMAILD_SCHEDULE"`

	// HealthAddr serves health probes while resident. Empty disables them.
	HealthAddr string `env:"EMAILD_HEALTH_ADDR"`

	LockKey     string        `env:"EMAILD_LOCK_KEY" envDefault:"emaild:run"`
	LockTTL     time.Duration `env:"EMAILD_LOCK_TTL" envDefault:"10m"`
	AutoMigrate bool          `env:"EMAILD_AUTO_MIGRATE" envDefault:"false"`
}

// Redis enables the run lock when URL is set.
type Redis struct {
	URL string `env:"REDIS_URL"`

	PoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"2"`
	RetryAttempts int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	DialTimeout   time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout   time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout  time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Options converts the settings into redis.Open options.
func (r Redis) Options() []redis.Option {
	return []redis.Option{
		redis.WithPoolSize(r.PoolSize),
		redis.WithRetry(r.RetryAttempts, r.RetryInterval),
		redis.WithTimeouts(r.DialTimeout, r.ReadTimeout, r.WriteTimeout),
	}
}

// Config is the complete job configuration.
type Config struct {
	App    App
	DB     db.Config
	Redis  Redis
	Google oauth.GoogleConfig
	Mailer mailer.Config
	Gmail  gmail.Config
	Resend resend.Config
	Sentry logger.SentryConfig

	location *time.Location
}

// Location returns the zone loaded from App.Timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Load reads the given .env files, or .env when none are given, then
// parses the environment. Missing env files are ignored; variables that are
// already set win over file values.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Join(ErrLoadEnvFile, err)
	}
	return parse(nil)
}

func parse(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, errors.Join(ErrParse, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return fmt.Errorf("%w: EMAILD_TIMEZONE %q: %w", ErrInvalidConfig, c.App.Timezone, err)
	}
	c.location = loc

	switch c.Mailer.Provider {
	case mailer.ProviderGmail:
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
			return fmt.Errorf("%w: gmail provider needs GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET", ErrInvalidConfig)
		}
	case mailer.ProviderResend:
		if c.Resend.APIKey == "" || c.Mailer.SenderEmail == "" {
			return fmt.Errorf("%w: resend provider needs RESEND_API_KEY and MAILER_FROM_EMAIL", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %w %q", ErrInvalidConfig, mailer.ErrUnknownProvider, c.Mailer.Provider)
	}

	if c.Redis.URL != "" && c.App.LockTTL <= 0 {
		return fmt.Errorf("%w: EMAILD_LOCK_TTL must be positive", ErrInvalidConfig)
	}
	return nil
}
