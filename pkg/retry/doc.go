// Package retry provides a bounded retry executor with deterministic
// exponential backoff for calls to the admin API.
//
// The executor makes no assumption about the transport; it only asks the
// classifier (incuhub/pkg/apierr) whether a failure carries a retryable
// status code. Errors without a status code are treated as connectivity
// failures and retried, except for context cancellation and errors wrapped
// with Permanent.
//
// Basic usage:
//
//	users, err := retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) ([]User, error) {
//	    return client.Users.List(ctx)
//	})
//
// Progress feedback between attempts goes through the OnRetry hook:
//
//	cfg := retry.DefaultConfig()
//	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
//	    log.Warn("retrying", "attempt", attempt, "delay", delay, "error", err)
//	}
//
// DoTracked captures the outcome instead of propagating it, for callers that
// want attempt and timing telemetry:
//
//	res := retry.DoTracked(ctx, cfg, op)
//	if !res.Success {
//	    log.Error("probe failed", "attempts", res.Attempts, "elapsed", res.Elapsed, "error", res.Err)
//	}
//
// Backoff is min(InitialDelay * Multiplier^(n-1), MaxDelay) for the n-th
// retry, with no jitter: concurrent callers of a CRUD dashboard do not
// contend enough to need herd protection, and deterministic delays keep the
// executor trivially testable via the Now/After seams.
package retry
