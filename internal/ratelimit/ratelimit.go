// Package ratelimit counts requests per key in fixed windows
package ratelimit

//go:generate mockgen -destination=mock/mock_store.go -package=mockratelimit -source=ratelimit.go

import (
	"context"
	"log"
	"time"
)

// Store tracks request counts
type Store interface {
	// Increment increments the counter for a key and returns the new count
	Increment(ctx context.Context, key string, window time.Duration) (int, error)

	// Reset resets the counter for a key
	Reset(ctx context.Context, key string) error
}

// Config configures a Limiter
type Config struct {
	Store       Store         // Optional, in-memory if nil
	MaxRequests int           // Requests allowed per window, zero or less disables limiting
	Window      time.Duration // Required when limiting
}

// Limiter allows up to MaxRequests per key in each window
type Limiter struct {
	store       Store
	maxRequests int
	window      time.Duration
}

// New creates a limiter
func New(cfg *Config) *Limiter {
	if cfg.MaxRequests > 0 && cfg.Window <= 0 {
		panic("window is required")
	}

	store := cfg.Store
	if store == nil {
		store = NewMemoryStore(nil)
	}

	return &Limiter{
		store:       store,
		maxRequests: cfg.MaxRequests,
		window:      cfg.Window,
	}
}

// Allow records a request for key and reports whether it is within the limit.
// Store failures let the request through.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.maxRequests <= 0 || key == "" {
		return true
	}

	count, err := l.store.Increment(ctx, key, l.window)
	if err != nil {
		log.Printf("RateLimit: failed to count request for %s: %v", key, err)
		return true
	}

	return count <= l.maxRequests
}

// Window returns the length of a window
func (l *Limiter) Window() time.Duration {
	return l.window
}
