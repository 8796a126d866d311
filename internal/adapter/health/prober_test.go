package health

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"incuhub/internal/api"
	"incuhub/pkg/apierr"
	"incuhub/pkg/retry"
)

type fakePinger struct {
	calls    int32
	failures int32
}

func (f *fakePinger) Ping(ctx context.Context) (api.HealthStatus, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return api.HealthStatus{}, apierr.New(503, "starting up")
	}
	return api.HealthStatus{Status: "ok"}, nil
}

func fastConfig() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.After = func(time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
	return cfg
}

func TestProberLogsRecovery(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	p := NewProber(&fakePinger{failures: 2}, fastConfig(), log)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run should not propagate probe errors, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "backend healthy") {
		t.Errorf("expected healthy log line, got: %s", out)
	}
	if !strings.Contains(out, "attempts=3") {
		t.Errorf("expected attempts=3 telemetry, got: %s", out)
	}
}

func TestProberLogsFailureWithoutPropagating(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	p := NewProber(&fakePinger{failures: 100}, fastConfig(), log)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run must swallow probe failures, got %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "backend unhealthy") {
		t.Errorf("expected unhealthy log line, got: %s", out)
	}
	if !strings.Contains(out, "attempts=4") {
		t.Errorf("expected exhausted attempts telemetry, got: %s", out)
	}
}

func TestSchedulerRunsJob(t *testing.T) {
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s := NewScheduler(context.Background(), log)

	var ran int32
	_, err := s.Add("@every 100ms", "tick", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(3 * time.Second)
	for atomic.LoadInt32(&ran) == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestSchedulerStopIdempotent(t *testing.T) {
	s := NewScheduler(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	s.Start()
	s.Stop()
	s.Stop() // must not panic or block
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if _, err := s.Add("not a cron spec", "bad", func(ctx context.Context) error { return nil }); err == nil {
		t.Error("expected error for invalid cron spec")
	}
}
