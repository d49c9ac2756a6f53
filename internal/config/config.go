package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tutor-accounts/internal/utils"
)

const minSecretLen = 32

// Config holds all runtime configuration values. It is built once at
// startup and passed to the components that need it; nothing reads the
// environment after that.
type Config struct {
	Env         string // application environment (dev, prod, test)
	Port        string // HTTP port to listen on
	BackendURL  string // public base URL of this service, used for OAuth callbacks
	FrontendURL string // base URL the OAuth callback redirects to

	DBUser string
	DBPass string // optional
	DBHost string
	DBPort string
	DBName string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration // parsed from JWT_ACCESS_TOKEN_EXPIRY
	RefreshTokenTTL  time.Duration // parsed from JWT_REFRESH_TOKEN_EXPIRY
	BcryptCost       int

	GoogleClientID     string
	GoogleClientSecret string

	RabbitMQURL string // empty disables account events

	Redis RedisConfig
	Cache CacheConfig
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads an optional .env file, then the environment, and exits the
// process when any required value is missing or malformed.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("config: failed to read .env file")
	}
	cfg, err := Parse(os.LookupEnv)
	if err != nil {
		logrus.WithError(err).Fatal("config: invalid environment")
	}
	return cfg
}

// Parse builds a Config from lookup. All problems are reported together.
func Parse(lookup LookupFunc) (Config, error) {
	e := &env{lookup: lookup}

	cfg := Config{
		Env:         e.must("APP_ENV"),
		Port:        e.def("APP_PORT", "8000"),
		BackendURL:  e.mustURL("BACKEND_URL"),
		FrontendURL: e.mustURL("FRONTEND_URL"),

		DBUser: e.must("DB_USER"),
		DBPass: e.def("DB_PASS", ""),
		DBHost: e.must("DB_HOST"),
		DBPort: e.must("DB_PORT"),
		DBName: e.must("DB_NAME"),

		JWTAccessSecret:  e.mustSecret("JWT_SECRET_KEY"),
		JWTRefreshSecret: e.mustSecret("JWT_REFRESH_TOKEN_KEY"),
		AccessTokenTTL:   e.expiry("JWT_ACCESS_TOKEN_EXPIRY", "5m"),
		RefreshTokenTTL:  e.expiry("JWT_REFRESH_TOKEN_EXPIRY", "7d"),
		BcryptCost:       e.int("BCRYPT_COST", 10),

		GoogleClientID:     e.must("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: e.must("GOOGLE_CLIENT_SECRET"),

		RabbitMQURL: e.def("RABBITMQ_URL", e.def("AMQP_URL", "")),
	}
	switch cfg.Env {
	case "", "dev", "prod", "test":
	default:
		e.fail("APP_ENV must be one of dev, prod, test; got %q", cfg.Env)
	}

	cfg.Redis = loadRedisConfig(e)
	cfg.Cache = loadCacheConfig(e)

	if len(e.errs) > 0 {
		return Config{}, errors.Join(e.errs...)
	}
	return cfg, nil
}

// env accumulates lookup failures instead of exiting on the first one.
type env struct {
	lookup LookupFunc
	errs   []error
}

func (e *env) fail(format string, args ...any) {
	e.errs = append(e.errs, fmt.Errorf(format, args...))
}

func (e *env) get(key string) string {
	v, ok := e.lookup(key)
	if !ok {
		return ""
	}
	return v
}

// must retrieves the value of a required variable.
func (e *env) must(key string) string {
	v := e.get(key)
	if v == "" {
		e.fail("missing required env var: %s", key)
	}
	return v
}

func (e *env) def(key, fallback string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return fallback
}

func (e *env) mustURL(key string) string {
	v := e.must(key)
	if v == "" {
		return ""
	}
	u, err := url.Parse(v)
	if err != nil || u.Scheme == "" || u.Host == "" {
		e.fail("invalid URL for %s: %q", key, v)
	}
	return v
}

func (e *env) mustSecret(key string) string {
	v := e.must(key)
	if v != "" && len(v) < minSecretLen {
		e.fail("%s must be at least %d characters", key, minSecretLen)
	}
	return v
}

func (e *env) expiry(key, fallback string) time.Duration {
	s := e.def(key, fallback)
	d, err := utils.ParseExpiry(s)
	if err != nil {
		e.fail("%s: %v", key, err)
	}
	return d
}

func (e *env) int(key string, fallback int) int {
	s := e.get(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		e.fail("invalid int for %s: %q", key, s)
	}
	return n
}

func (e *env) bool(key string, fallback bool) bool {
	switch e.get(key) {
	case "":
		return fallback
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	e.fail("invalid bool for %s: %q", key, e.get(key))
	return fallback
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	s := e.get(key)
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		e.fail("invalid duration for %s: %q", key, s)
	}
	return d
}
