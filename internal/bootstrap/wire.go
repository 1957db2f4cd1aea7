package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/stockpilot/stockpilot/internal/application/auth"
	"github.com/stockpilot/stockpilot/internal/audit"
	"github.com/stockpilot/stockpilot/internal/config"
	"github.com/stockpilot/stockpilot/internal/domain"
	"github.com/stockpilot/stockpilot/internal/infrastructure/db/postgres"
	"github.com/stockpilot/stockpilot/internal/infrastructure/email"
	"github.com/stockpilot/stockpilot/internal/infrastructure/memory"
	rabbitmq_pub "github.com/stockpilot/stockpilot/internal/infrastructure/messaging/rabbitmq"
	"github.com/stockpilot/stockpilot/internal/infrastructure/redis"
	"github.com/stockpilot/stockpilot/internal/infrastructure/security"
	"github.com/stockpilot/stockpilot/internal/logger"
	http_handlers "github.com/stockpilot/stockpilot/internal/transport/http/handlers"
	"github.com/stockpilot/stockpilot/internal/transport/http/middleware"
	"github.com/stockpilot/stockpilot/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (DBCloser, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(rabbitURL string) (Publisher, error)

	NewMailer func(cfg *config.Config) auth.MailSender

	NewRouter func(router.Deps) http.Handler
}

type DBCloser interface {
	Close() error
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

type Publisher interface{}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) db
	db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() { _ = db.Close() },
	}

	// 2) user repo
	sqlDB, ok := db.(*sql.DB)
	if !ok {
		runCleanup(cleanupFns)
		return nil, nil, errors.New("bootstrap: NewDB did not return *sql.DB")
	}

	userRepo := postgres.NewUserRepo(sqlDB)

	// 3) redis (best-effort, rate limiting only)
	var redisCli RedisClient
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.Ping(ctx); err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; rate limiting disabled")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) publisher
	pub, err := deps.NewPublisher(cfg.RabbitURL)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = memory.NewNoopPublisher()
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	} else {
		if p, ok := pub.(interface{ SetExchange(string) }); ok {
			p.SetExchange(cfg.RabbitExchange)
		}
	}

	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 5) mail transport
	mailer := deps.NewMailer(cfg)

	// 6) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 7) service
	authSvc := auth.NewService(
		userRepo,
		signer,
		mailer,
		pub.(auth.EventPublisher),
		auth.Config{
			LinkTTL:           cfg.LoginLinkTTL,
			SessionTTL:        cfg.SessionTTL,
			VerifyLinkBaseURL: cfg.VerifyLinkBaseURL,
		},
	)

	authSvc = authSvc.WithAudit(audit.New(logger.Logger).Event)

	// 8) handlers + middleware
	secureCookies := cfg.Env != "dev"

	authH := http_handlers.NewAuthHandler(authSvc, secureCookies)
	healthH := http_handlers.NewHealthHandler(sqlDB)

	sessionMW := middleware.NewSessionGuard(signer, userRepo).Middleware
	adminMW := middleware.RequireAtLeast(domain.RoleAdmin)

	// rate limit (fail-open)
	var fwLimiter *redis.FixedWindowLimiter
	if redisCli != nil {
		fwLimiter = redis.NewFixedWindowLimiter(redisCli.(*redis.Client))
	}

	rl := func(scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
		if fwLimiter == nil {
			return nil
		}
		return middleware.RateLimitFixedWindow(fwLimiter, scope, limit, window)
	}

	// 9) router
	mux := deps.NewRouter(router.Deps{
		Health: healthH,
		Auth:   authH,

		RequestIDMW: middleware.RequestID,
		SessionMW:   sessionMW,
		AdminMW:     adminMW,

		RLLogin:    rl("auth.login", cfg.LoginRateLimit, cfg.LoginRateWindow),
		RLRegister: rl("auth.register", cfg.RegisterRateLimit, cfg.RegisterRateWindow),
	})

	// 10) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB: func(addr string, debug bool) (DBCloser, error) {
			return config.NewDB(addr, debug)
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url)
		},
		NewMailer: func(cfg *config.Config) auth.MailSender {
			if cfg.SMTPHost == "" {
				return email.NewLogSender(logger.Logger)
			}
			return email.NewSMTPSender(email.SMTPConfig{
				Host:     cfg.SMTPHost,
				Port:     cfg.SMTPPort,
				Username: cfg.SMTPUser,
				Password: cfg.SMTPPass,
				From:     cfg.SMTPFrom,
				Timeout:  cfg.SMTPTimeout,
				Insecure: cfg.SMTPInsecure,
			}, logger.Logger)
		},
		NewRouter: router.New,
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
