// Package narrator bounds calls to a narrative backend.
package narrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"ecovalley"
)

// GuardConfig bounds every call made through a Guard. A zero Timeout or
// RatePerSecond disables that bound.
type GuardConfig struct {
	Provider      string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// Guard wraps a backend with a per-call timeout and a shared rate limit. Any
// failure, including an expired deadline, is an ecovalley.ErrExternalService.
type Guard struct {
	next     ecovalley.Narrator
	provider string
	timeout  time.Duration
	limiter  *rate.Limiter
}

func NewGuard(next ecovalley.Narrator, cfg GuardConfig) *Guard {
	g := &Guard{
		next:     next,
		provider: cfg.Provider,
		timeout:  cfg.Timeout,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return g
}

func (g *Guard) Generate(ctx context.Context, req ecovalley.NarrativeRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", ecovalley.ExternalService("narrator rate limit", err)
		}
	}

	start := time.Now()
	text, err := g.next.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Error("NARRATOR: Timed out", "provider", g.provider, "timeout", g.timeout)
		} else {
			slog.Error("NARRATOR: Generation failed", "provider", g.provider, "error", err)
		}
		return "", ecovalley.ExternalService(g.provider, err)
	}

	slog.Info("NARRATOR: Generated", "provider", g.provider, "duration", time.Since(start), "chars", len(text))
	return text, nil
}
