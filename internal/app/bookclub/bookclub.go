// Package bookclub собирает HTTP-сервер книжного клуба: хранилище, сессии,
// сервисы, маршруты и фоновые задачи.
package bookclub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/book-club/internal/config"
	"github.com/magabrotheeeer/book-club/internal/http/middlewarectx"
	"github.com/magabrotheeeer/book-club/internal/http/sessioncookie"
	"github.com/magabrotheeeer/book-club/internal/lib/jwt"
	"github.com/magabrotheeeer/book-club/internal/lib/metrics"
	"github.com/magabrotheeeer/book-club/internal/lib/password"
	"github.com/magabrotheeeer/book-club/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/book-club/internal/lib/sl"
	"github.com/magabrotheeeer/book-club/internal/migrations"
	authservice "github.com/magabrotheeeer/book-club/internal/services/auth"
	bookservice "github.com/magabrotheeeer/book-club/internal/services/books"
	"github.com/magabrotheeeer/book-club/internal/session"
	"github.com/magabrotheeeer/book-club/internal/storage"
	"github.com/magabrotheeeer/book-club/internal/version"
)

const (
	cookieIssuer    = "bookclub"
	shutdownTimeout = 15 * time.Second
	amqpRetries     = 5
	amqpRetryDelay  = 2 * time.Second
)

// App — собранное приложение.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage

	memSessions   *session.MemoryStore
	sweepInterval time.Duration

	redis    *redis.Client
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New инициализирует зависимости и HTTP-сервер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "bookclub.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger:        logger,
		db:            db,
		sweepInterval: cfg.Session.SweepInterval,
	}

	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := session.NewRedisClient(ctx, cfg.RedisConnection)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.redis = client
		sessions = session.NewRedisStore(client, cfg.Session.IdleTimeout)
	default:
		app.memSessions = session.NewMemoryStore(session.WithIdleTimeout(cfg.Session.IdleTimeout))
		sessions = app.memSessions
	}
	logger.Info("session store ready", slog.String("backend", cfg.Session.Backend))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := []authservice.Option{
		authservice.WithMetrics(m),
		authservice.WithUniformLoginErrors(cfg.Auth.UniformLoginErrors),
		authservice.WithPasswordPolicy(cfg.Auth.EnforcePasswordPolicy),
	}
	if publisher := app.connectEvents(cfg.RabbitMQ); publisher != nil {
		opts = append(opts, authservice.WithEvents(publisher))
	}

	authService := authservice.New(logger, db, password.NewHasher(cfg.Auth.BcryptCost), sessions, opts...)
	bookService := bookservice.New(db, logger)

	cookies := sessioncookie.New(
		cfg.Session.CookieName,
		cfg.Session.CookieSecure,
		cfg.Session.CookieSameSite,
		jwt.NewJWTMaker(cfg.Session.Secret, cookieIssuer),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:         logger,
		Auth:           authService,
		Books:          bookService,
		Sessions:       sessions,
		Cookies:        cookies,
		Metrics:        m,
		Gatherer:       reg,
		Limiter:        middlewarectx.NewIPRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst),
		AllowedOrigins: cfg.AllowedOrigins,
		UniformErrors:  cfg.Auth.UniformLoginErrors,
		Version:        version.Version,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// connectEvents подключается к RabbitMQ. Без URL или при ошибке
// приложение работает без публикации событий.
func (a *App) connectEvents(cfg config.RabbitMQ) *rabbitmq.Publisher {
	if cfg.URL == "" {
		return nil
	}
	conn, err := rabbitmq.Connect(cfg.URL, amqpRetries, amqpRetryDelay)
	if err != nil {
		a.logger.Warn("rabbitmq unavailable, events disabled", sl.Err(err))
		return nil
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetAuthQueues())
	if err != nil {
		a.logger.Warn("rabbitmq channel setup failed, events disabled", sl.Err(err))
		_ = conn.Close()
		return nil
	}
	a.amqpConn, a.amqpCh = conn, ch
	return rabbitmq.NewPublisher(ch, cfg.Exchange)
}

// Run запускает сервер и фоновую очистку сессий и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	if a.memSessions != nil {
		go a.memSessions.RunSweeper(ctx, a.sweepInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqpCh != nil {
		_ = a.amqpCh.Close()
	}
	if a.amqpConn != nil {
		_ = a.amqpConn.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", sl.Err(err))
		}
	}
}
