// Package app wires configuration, logging, the API client and the health
// prober into a runnable application.
package app

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"incuhub/internal/adapter/health"
	"incuhub/internal/api"
	"incuhub/internal/config"
	"incuhub/internal/platform/httpclient"
	"incuhub/internal/platform/logger"
	"incuhub/pkg/retry"
)

// App wires application components.
type App struct {
	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
}

// New creates a new App instance and loads configuration.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, closeLog := logger.New(logger.Options{
		Env:          cfg.Env,
		ConsoleLevel: cfg.Log.ConsoleLevel,
		FileLevel:    cfg.Log.FileLevel,
		File:         cfg.Log.File,
		App:          "incuhub",
	})
	return &App{cfg: cfg, log: log, closeLog: closeLog}, nil
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	defer func() { _ = a.closeLog() }()
	a.log.Info("starting", slog.String("api", a.cfg.API.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = a.cfg.Retry.MaxRetries
	retryCfg.InitialDelay = a.cfg.Retry.InitialDelay
	retryCfg.MaxDelay = a.cfg.Retry.MaxDelay
	retryCfg.Multiplier = a.cfg.Retry.Multiplier

	hc := httpclient.New(
		httpclient.WithLogger(a.log),
		httpclient.WithTimeout(15*time.Second),
		httpclient.WithBearerToken(a.cfg.API.Token),
	)
	client := api.New(a.cfg.API.BaseURL,
		api.WithHTTPClient(hc),
		api.WithLogger(a.log),
		api.WithRetryConfig(retryCfg),
	)

	sched := health.NewScheduler(ctx, a.log)
	prober := health.NewProber(client.Health, retryCfg, a.log)
	if err := prober.Register(sched, a.cfg.Probe.Schedule); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Probe once at startup so a misconfigured base URL shows up immediately.
	_ = prober.Run(ctx)

	<-ctx.Done()
	a.log.Info("shutting down")
	return nil
}
