package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	// Login-link flow. VerifyLinkBaseURL must include `token=` because
	// the service appends the token verbatim.
	VerifyLinkBaseURL string
	LoginLinkTTL      time.Duration

	// Infrastructure
	DBAddr    string
	DBDebug   bool
	RedisAddr string
	RedisPass string
	RedisDB   int
	RabbitURL string

	RabbitExchange string

	// Mail transport
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPTimeout  time.Duration
	SMTPInsecure bool

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Rate limits (per IP, fixed window)
	LoginRateLimit     int
	LoginRateWindow    time.Duration
	RegisterRateLimit  int
	RegisterRateWindow time.Duration
}

func Load() (*Config, error) {
	// .env is a dev convenience; real deployments set the environment.
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "stockpilot")

	sttl, err := getDuration("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = sttl

	lttl, err := getDuration("LOGIN_LINK_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.LoginLinkTTL = lttl

	cfg.VerifyLinkBaseURL = os.Getenv("VERIFY_LINK_BASE_URL")
	if cfg.VerifyLinkBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: VERIFY_LINK_BASE_URL")
	}
	if !strings.Contains(cfg.VerifyLinkBaseURL, "token=") {
		return nil, fmt.Errorf("VERIFY_LINK_BASE_URL must contain `token=`")
	}

	// Infrastructure dependencies.
	// The database is required: the service cannot operate without its
	// user directory. Redis and RabbitMQ degrade gracefully, so they are
	// only required outside dev.

	cfg.DBAddr = os.Getenv("DB_ADDR")
	if cfg.DBAddr == "" {
		return nil, fmt.Errorf("missing required env var: DB_ADDR")
	}
	cfg.DBDebug = getEnv("DB_DEBUG", "") == "true"

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPass = os.Getenv("REDIS_PASSWORD")
	rdb, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = rdb

	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	if cfg.RabbitURL == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: RABBIT_URL")
	}
	cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "stockpilot.events")

	// Mail transport. Optional in dev (links are logged instead).
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" && cfg.Env != "dev" {
		return nil, fmt.Errorf("missing required env var: SMTP_HOST")
	}
	sp, err := getInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTPPort = sp
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPass = os.Getenv("SMTP_PASS")
	cfg.SMTPFrom = getEnv("SMTP_FROM", "StockPilot <no-reply@stockpilot.local>")
	st, err := getDuration("SMTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.SMTPTimeout = st
	cfg.SMTPInsecure = getEnv("SMTP_INSECURE", "") == "true"

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	ll, err := getInt("LOGIN_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	cfg.LoginRateLimit = ll
	lw, err := getDuration("LOGIN_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.LoginRateWindow = lw

	rl, err := getInt("REGISTER_RATE_LIMIT", 3)
	if err != nil {
		return nil, err
	}
	cfg.RegisterRateLimit = rl
	rw, err := getDuration("REGISTER_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.RegisterRateWindow = rw

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
