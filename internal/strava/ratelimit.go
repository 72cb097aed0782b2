package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strava allows 100 requests per 15 minutes and 1000 per day. A batch
// export is sequential, so a minimum spacing between requests plus
// backing off when the 15-minute window is exhausted is enough.

// RateLimiter spaces out API requests and tracks usage reported by
// Strava's X-RateLimit headers.
type RateLimiter struct {
	// MinInterval spaces successive requests. Tests may lower it.
	MinInterval time.Duration

	mu sync.Mutex

	shortLimit    int
	shortUsage    int
	shortResetsAt time.Time

	lastRequest time.Time
}

// NewRateLimiter creates a rate limiter with Strava's 15-minute limit.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		MinInterval:   150 * time.Millisecond,
		shortLimit:    100,
		shortResetsAt: time.Now().Add(15 * time.Minute),
	}
}

// Wait blocks until a request can be made without exceeding rate limits.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.After(r.shortResetsAt) {
		r.shortUsage = 0
		r.shortResetsAt = now.Add(15 * time.Minute)
	}

	if r.shortUsage >= r.shortLimit {
		if err := r.sleep(ctx, time.Until(r.shortResetsAt)); err != nil {
			return err
		}
		r.shortUsage = 0
		r.shortResetsAt = time.Now().Add(15 * time.Minute)
	}

	if elapsed := time.Since(r.lastRequest); elapsed < r.MinInterval {
		if err := r.sleep(ctx, r.MinInterval-elapsed); err != nil {
			return err
		}
	}

	r.shortUsage++
	r.lastRequest = time.Now()
	return nil
}

// sleep releases the lock while waiting so UpdateFromHeaders can run.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Unlock()
	defer r.mu.Lock()
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs usage with what Strava reports.
// Strava returns X-RateLimit-Limit: "100,1000" and X-RateLimit-Usage: "34,512".
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if usage := h.Get("X-RateLimit-Usage"); usage != "" {
		if parts := strings.Split(usage, ","); len(parts) >= 1 {
			if short, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				r.shortUsage = short
			}
		}
	}
	if limit := h.Get("X-RateLimit-Limit"); limit != "" {
		if parts := strings.Split(limit, ","); len(parts) >= 1 {
			if short, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
				r.shortLimit = short
			}
		}
	}
}
