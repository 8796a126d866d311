package health

import (
	"context"
	"log/slog"

	"incuhub/internal/api"
	"incuhub/pkg/apierr"
	"incuhub/pkg/retry"
)

// Pinger is the slice of the API client the prober needs.
type Pinger interface {
	Ping(ctx context.Context) (api.HealthStatus, error)
}

// Prober checks backend liveness through the tracked executor and logs the
// attempt/timing telemetry of every probe.
type Prober struct {
	pinger Pinger
	cfg    retry.Config
	log    *slog.Logger
}

// NewProber creates a Prober using the given retry configuration.
func NewProber(pinger Pinger, cfg retry.Config, log *slog.Logger) *Prober {
	if log == nil {
		log = slog.Default()
	}
	return &Prober{pinger: pinger, cfg: cfg, log: log}
}

// Run performs one probe. It never returns the probe error itself; the
// outcome is logged and a degraded backend is reported, not propagated, so
// the scheduler keeps probing.
func (p *Prober) Run(ctx context.Context) error {
	res := retry.DoTracked(ctx, p.cfg, func(ctx context.Context) (api.HealthStatus, error) {
		return p.pinger.Ping(ctx)
	})
	if !res.Success {
		p.log.Warn("backend unhealthy",
			slog.Int("attempts", res.Attempts),
			slog.Duration("elapsed", res.Elapsed),
			slog.String("cause", apierr.UserMessage(res.Err)),
			slog.Any("error", res.Err))
		return nil
	}
	p.log.Info("backend healthy",
		slog.String("status", res.Data.Status),
		slog.Int("attempts", res.Attempts),
		slog.Duration("elapsed", res.Elapsed))
	return nil
}

// Register schedules the prober on s under the given cron spec.
func (p *Prober) Register(s *Scheduler, spec string) error {
	_, err := s.Add(spec, "health-probe", p.Run)
	return err
}
