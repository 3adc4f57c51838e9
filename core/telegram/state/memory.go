package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
)

// DefaultTTL is applied when no WithTTL option is given.
const DefaultTTL = 30 * time.Minute

// Store is an in-memory map from user id to one conversation value.
type Store[S any] struct {
	mu      sync.RWMutex
	entries map[int64]entry[S]
	opts    options
}

// NewStore constructs an empty Store.
func NewStore[S any](opts ...Option) *Store[S] {
	o := options{ttl: DefaultTTL, clock: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Store[S]{
		entries: make(map[int64]entry[S]),
		opts:    o,
	}
}

// Get returns the live value for userID.
func (s *Store[S]) Get(userID int64) (S, bool) {
	s.mu.RLock()
	e, ok := s.entries[userID]
	s.mu.RUnlock()
	if !ok || s.expired(e, s.opts.clock()) {
		var zero S
		return zero, false
	}
	return e.value, true
}

// Active reports whether userID has a live value.
func (s *Store[S]) Active(userID int64) bool {
	_, ok := s.Get(userID)
	return ok
}

// Set replaces the value for userID and refreshes its expiry.
func (s *Store[S]) Set(userID int64, value S) {
	s.mu.Lock()
	s.entries[userID] = entry[S]{value: value, updatedAt: s.opts.clock()}
	s.mu.Unlock()
}

// Clear removes the value for userID and reports whether a live one existed.
func (s *Store[S]) Clear(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		return false
	}
	delete(s.entries, userID)
	return !s.expired(e, s.opts.clock())
}

// Len counts stored entries, expired ones included until swept.
func (s *Store[S]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (s *Store[S]) Sweep() int {
	if s.opts.ttl <= 0 {
		return 0
	}
	now := s.opts.clock()
	var evicted []int64
	s.mu.Lock()
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			evicted = append(evicted, id)
		}
	}
	s.mu.Unlock()

	if s.opts.onEvict != nil {
		for _, id := range evicted {
			s.opts.onEvict(id)
		}
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done.
func (s *Store[S]) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.opts.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				logger.Debug(ctx, "tg", "state.sweep",
					slog.Int("evicted", n),
					slog.Int("remaining", s.Len()),
				)
			}
		}
	}
}

func (s *Store[S]) expired(e entry[S], now time.Time) bool {
	return s.opts.ttl > 0 && now.Sub(e.updatedAt) >= s.opts.ttl
}
