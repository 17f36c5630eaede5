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

const defaultTokenFile = "/run/secrets/telegram_bot_token"

var ErrNoToken = errors.New("telegram bot token not found in docker secret or TELEGRAM_BOT_TOKEN")

type TelegramConfig struct {
	Token         string
	Debug         bool
	UpdateTimeout int // long-poll seconds
}

type PricingConfig struct {
	BaseURL       string
	LookupTimeout time.Duration
	UserAgent     string
}

type CacheConfig struct {
	Enabled bool
	DBPath  string
	TTL     time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Color  bool
}

type Config struct {
	Telegram    TelegramConfig
	Pricing     PricingConfig
	Cache       CacheConfig
	Session     SessionConfig
	Log         LogConfig
	CatalogPath string // empty means the embedded catalog
}

// Load reads ./.env when present (or the given paths, which must exist) and
// then the process environment. Malformed values are reported together.
func Load(envPath ...string) (Config, error) {
	if err := godotenv.Load(envPath...); err != nil {
		if len(envPath) > 0 || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	var p parser
	cfg := Config{
		Telegram: TelegramConfig{
			Token:         botToken(p.str("TELEGRAM_BOT_TOKEN_FILE", defaultTokenFile)),
			Debug:         p.boolean("TELEGRAM_DEBUG", false),
			UpdateTimeout: p.integer("TELEGRAM_UPDATE_TIMEOUT", 60),
		},
		Pricing: PricingConfig{
			BaseURL:       p.str("PRICE_SERVICE_URL", "http://localhost:8000/estimate"),
			LookupTimeout: p.duration("LOOKUP_TIMEOUT", 10*time.Second),
			UserAgent:     p.str("USER_AGENT", "roofbot/1.0"),
		},
		Cache: CacheConfig{
			Enabled: p.boolean("CACHE_ENABLED", true),
			DBPath:  p.str("CACHE_DB_PATH", ":memory:"),
			TTL:     p.duration("CACHE_TTL", 6*time.Hour),
		},
		Session: SessionConfig{
			IdleTTL:       p.duration("SESSION_IDLE_TTL", 24*time.Hour),
			SweepInterval: p.duration("SWEEP_INTERVAL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  p.str("LOG_LEVEL", "info"),
			Format: p.str("LOG_FORMAT", "text"),
			Color:  p.boolean("LOG_COLOR", false),
		},
		CatalogPath: p.str("CATALOG_PATH", ""),
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Pricing.BaseURL == "" {
		errs = append(errs, errors.New("PRICE_SERVICE_URL must not be empty"))
	}
	if c.Pricing.LookupTimeout <= 0 {
		errs = append(errs, errors.New("LOOKUP_TIMEOUT must be positive"))
	}
	if c.Session.IdleTTL <= 0 || c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL and SWEEP_INTERVAL must be positive"))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive when the cache is enabled"))
	}
	if c.Telegram.UpdateTimeout < 0 {
		errs = append(errs, errors.New("TELEGRAM_UPDATE_TIMEOUT must not be negative"))
	}
	return errors.Join(errs...)
}

// RequireToken fails when no bot token was configured. Only the bot needs one.
func (c Config) RequireToken() error {
	if c.Telegram.Token == "" {
		return ErrNoToken
	}
	return nil
}

// botToken prefers the docker secret over the environment variable.
func botToken(secretFile string) string {
	if secretFile != "" {
		if data, err := os.ReadFile(secretFile); err == nil {
			if token := strings.TrimSpace(string(data)); token != "" {
				return token
			}
		}
	}
	return strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
}

type parser struct {
	errs []error
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q: not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q: not a boolean", key, v))
		return def
	}
	return b
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s=%q: not a duration", key, v))
		return def
	}
	return d
}
