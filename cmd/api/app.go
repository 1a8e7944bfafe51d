package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/delordemm1/agency-portfolio-api/internal/cache"
	"github.com/delordemm1/agency-portfolio-api/internal/config"
	"github.com/delordemm1/agency-portfolio-api/internal/database"
	"github.com/delordemm1/agency-portfolio-api/internal/httpx"
	"github.com/delordemm1/agency-portfolio-api/internal/imagehost"
	"github.com/delordemm1/agency-portfolio-api/internal/metrics"
	"github.com/delordemm1/agency-portfolio-api/internal/middleware"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/catalog"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/contact"
	"github.com/delordemm1/agency-portfolio-api/internal/modules/user"
	"github.com/delordemm1/agency-portfolio-api/internal/notification"
	"github.com/delordemm1/agency-portfolio-api/internal/notification/templates"
	"github.com/delordemm1/agency-portfolio-api/internal/server"
)

// app owns the HTTP server and the background goroutines started with it.
type app struct {
	log     *slog.Logger
	srv     *http.Server
	cancel  context.CancelFunc
	bg      sync.WaitGroup
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, addr string) (*app, error) {
	a := &app{log: logger}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	// --- Database & Cache ---
	pool, err := database.NewPostgresPool(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })

	rec := metrics.New()

	// --- Notifications ---
	queue := notification.NewRedisQueue(rdb)
	engine := templates.NewEngine(templates.Config{Dir: cfg.Mail.TemplateDir, Reload: !cfg.IsProduction()}, logger)
	notifier := notification.NewService(logger, queue, engine, cfg.Mail.From)
	sender, err := notification.NewSender(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("mail sender: %w", err)
	}
	worker := notification.NewWorker(queue, sender, logger, rec, notification.WorkerConfig{
		Concurrency: cfg.Mail.Workers,
		MaxRetries:  cfg.Mail.MaxRetries,
	})

	images, err := imagehost.NewMinIOHost(ctx, imagehost.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
		MaxWidth:  cfg.Storage.MaxWidth,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("image host: %w", err)
	}

	// --- Module Initialization (Bottom-Up) ---
	tokens, err := user.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.AccessTokenTTL())
	if err != nil {
		return nil, err
	}
	verifier, err := user.NewGoogleVerifier(ctx)
	if err != nil {
		return nil, err
	}
	userService := user.NewService(&user.Config{
		Repo:     user.NewRepository(pool),
		Logger:   logger,
		Hasher:   user.NewBcryptHasher(),
		Tokens:   tokens,
		Identity: verifier,
		Notifier: notifier,
		Metrics:  rec,
		Settings: user.Settings{
			FrontendURL:    cfg.App.FrontendURL,
			GoogleClientID: cfg.Google.ClientID,
			AccountFrom:    cfg.Mail.SupportFrom,
			OTPTTL:         cfg.Verification.OTPTTL(),
			ReplayWindow:   cfg.Verification.ReplayWindow,
		},
	})
	catalogService := catalog.NewService(&catalog.Config{
		Repo:      catalog.NewRepository(pool),
		Images:    images,
		Notifier:  notifier,
		Profiles:  userService,
		Logger:    logger,
		ContactTo: cfg.Mail.ContactTo,
	})
	contactService := contact.NewService(notifier, cfg.Mail.ContactTo, logger)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger)
	guards := middleware.NewGuards(userService, limiter, logger)

	router, _ := server.New(cfg, logger, rec, guards,
		user.NewHandler(userService, logger),
		catalog.NewHandler(catalogService, logger),
		contact.NewHandler(contactService, logger),
	)
	a.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.goBackground(func() { worker.Run(bgCtx) })
	a.goBackground(func() { limiter.Run(bgCtx) })

	ok = true
	return a, nil
}

func (a *app) goBackground(fn func()) {
	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		fn()
	}()
}

// serve blocks until the server stops. A graceful shutdown is not an error.
func (a *app) serve() error {
	a.log.Info("starting server", "addr", a.srv.Addr)
	if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdown drains in-flight requests, stops the workers and releases connections.
func (a *app) shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.log.Info("shutting down")
	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("server shutdown", "error", err)
	}
	a.cancel()
	if !waitGroup(ctx, &a.bg) {
		// Unacknowledged mail stays reserved in Redis and is requeued on the next start.
		a.log.Warn("background workers still running at shutdown deadline")
	}
	a.close()
	a.log.Info("shutdown complete")
}

// waitGroup waits for wg until ctx is done and reports whether wg finished.
func waitGroup(ctx context.Context, wg *sync.WaitGroup) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openAPIDocument builds the API without any infrastructure; registration never calls services.
func openAPIDocument(logger *slog.Logger) ([]byte, error) {
	_, api := server.New(&config.Config{}, logger, nil, httpx.Guards{},
		user.NewHandler(nil, logger),
		catalog.NewHandler(nil, logger),
		contact.NewHandler(nil, logger),
	)
	return api.OpenAPI().YAML()
}
