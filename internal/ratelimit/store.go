// Package ratelimit implements fixed-window request admission with a
// temporary block once a client exceeds its ceiling.
package ratelimit

import (
	"context"
	"time"
)

// Record is the per-client state. Zero BlockedUntil means "not blocked".
type Record struct {
	Count         int
	WindowResetAt time.Time
	BlockedUntil  time.Time
}

// Expired reports whether both the window and any block are over at now.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.WindowResetAt) && !now.Before(r.BlockedUntil)
}

// Store persists Records. Update must apply fn atomically with respect to
// other Updates of the same key; fn may be invoked more than once.
type Store interface {
	Update(ctx context.Context, key string, fn func(rec *Record)) (Record, error)
	// Sweep drops records that are expired at now and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
