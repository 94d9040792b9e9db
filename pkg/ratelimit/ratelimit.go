// Package ratelimit implements a sliding-window request limiter keyed by an
// arbitrary string (the HTTP boundary uses clientIP:route). The Store
// interface keeps the counter backend substitutable: the in-memory store is
// correct for a single instance, the Redis store carries the same window
// semantics across instances.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRateLimited signals denial distinctly from authentication failures so
// the boundary can answer 429 with retry guidance.
var ErrRateLimited = errors.New("too many requests")

// Store decides whether a request under the given key may proceed.
type Store interface {
	// Allow prunes entries older than the window, then admits and records
	// the request if the key is under the limit. Denied requests are not
	// recorded.
	Allow(ctx context.Context, key string) (bool, error)
}

const (
	DefaultWindow      = time.Minute
	DefaultMaxRequests = 100
)

// MemoryStore is a process-local sliding-window store. Each key holds the
// timestamps of requests inside the window; access is synchronized so
// concurrent requests to the same key cannot under-count.
type MemoryStore struct {
	mu          sync.Mutex
	requests    map[string][]time.Time
	window      time.Duration
	maxRequests int
	now         func() time.Time
}

func NewMemoryStore(window time.Duration, maxRequests int) *MemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}

	return &MemoryStore{
		requests:    make(map[string][]time.Time),
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-s.window)

	timestamps := s.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= s.maxRequests {
		s.requests[key] = valid
		return false, nil
	}

	s.requests[key] = append(valid, now)
	return true, nil
}

// Len reports the number of recorded requests for a key, for tests and
// introspection.
func (s *MemoryStore) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests[key])
}
