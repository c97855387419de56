package net

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/go-github/v83/github"
)

const rateLimitThreshold = 10

// waitForRateLimit blocks until the GitHub rate limit window resets when
// fewer than rateLimitThreshold requests remain.
func waitForRateLimit(ctx context.Context, resp *github.Response) error {
	if resp == nil || resp.Rate.Remaining > rateLimitThreshold {
		return nil
	}

	resetAt := resp.Rate.Reset.Time
	wait := time.Until(resetAt)
	if wait <= 0 {
		return nil
	}

	jitter := time.Duration(rand.IntN(2000)) * time.Millisecond
	total := wait + jitter

	slog.Info("rate limit approaching, waiting",
		"remaining", resp.Rate.Remaining,
		"reset_at", resetAt.Format(time.RFC3339),
		"wait", total.String(),
	)

	t := time.NewTimer(total)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
