package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/justsurfingit/vacancy-parser/internal/logger"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultMaxRequests   = 100
	DefaultWindow        = 60 * time.Second
	DefaultBlockDuration = 60 * time.Second
	DefaultSweepInterval = 5 * time.Minute
)

// Config holds the admission rule.
type Config struct {
	MaxRequests   int
	Window        time.Duration
	BlockDuration time.Duration
	SweepInterval time.Duration
}

func (c *Config) SetDefaults() {
	if c.MaxRequests <= 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = DefaultBlockDuration
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
}

// Decision is the outcome of Check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1 for
// a rejected request.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int((d.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Stats are cumulative counters since the limiter was created.
type Stats struct {
	Checks  int64
	Allowed int64
	Blocked int64
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithObserver is called after every decision.
func WithObserver(fn func(Decision)) Option {
	return func(l *Limiter) { l.observe = fn }
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) { l.log = log }
}

// Limiter admits or rejects requests per client id.
type Limiter struct {
	store   Store
	cfg     Config
	now     func() time.Time
	observe func(Decision)
	log     logger.Logger

	checks  atomic.Int64
	allowed atomic.Int64
	blocked atomic.Int64
}

func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate limit store is required")
	}
	cfg.SetDefaults()

	l := &Limiter{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		log:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Check records one request from clientID and decides whether to admit it.
func (l *Limiter) Check(ctx context.Context, clientID string) (Decision, error) {
	key := strings.TrimSpace(clientID)
	now := l.now()

	var decision Decision
	_, err := l.store.Update(ctx, key, func(rec *Record) {
		decision = Decision{Allowed: true}

		if now.Before(rec.BlockedUntil) {
			decision = Decision{RetryAfter: rec.BlockedUntil.Sub(now)}
			return
		}

		// New client, elapsed window, or a block that has just run out.
		if rec.Count == 0 || !now.Before(rec.WindowResetAt) || !rec.BlockedUntil.IsZero() {
			*rec = Record{Count: 1, WindowResetAt: now.Add(l.cfg.Window)}
			return
		}

		rec.Count++
		if rec.Count > l.cfg.MaxRequests {
			rec.BlockedUntil = now.Add(l.cfg.BlockDuration)
			decision = Decision{RetryAfter: l.cfg.BlockDuration}
		}
	})
	if err != nil {
		return Decision{}, fmt.Errorf("check rate limit: %w", err)
	}

	l.checks.Add(1)
	if decision.Allowed {
		l.allowed.Add(1)
	} else {
		l.blocked.Add(1)
	}
	if l.observe != nil {
		l.observe(decision)
	}
	return decision, nil
}

// Stats returns a snapshot of the counters.
func (l *Limiter) Stats() Stats {
	return Stats{
		Checks:  l.checks.Load(),
		Allowed: l.allowed.Load(),
		Blocked: l.blocked.Load(),
	}
}

// Sweep removes expired records once.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.now())
}

// RunSweeper sweeps every SweepInterval until ctx is done.
func (l *Limiter) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := l.Sweep(ctx)
			if err != nil {
				l.log.Warn("Rate limit sweep failed", logger.Error(err))
				continue
			}
			if removed > 0 {
				l.log.Debug("Rate limit records swept", logger.Int("removed", removed))
			}
		}
	}
}
