// Package monitor keeps hourly request statistics for the last 24 hours.
package monitor

import (
	"sync"
	"time"
)

const (
	window = 24 * time.Hour
	// HealthyRate is the success rate below which status turns to attention.
	HealthyRate = 95.0
)

const (
	StatusHealthy   = "healthy"
	StatusAttention = "attention"
)

type bucket struct {
	requests  int
	successes int
	users     map[int64]struct{}
}

// Monitor is safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	buckets map[int64]*bucket
}

// New starts the uptime clock. A nil now uses time.Now.
func New(now func() time.Time) *Monitor {
	if now == nil {
		now = time.Now
	}
	return &Monitor{now: now, started: now(), buckets: make(map[int64]*bucket)}
}

func hourOf(t time.Time) int64 { return t.Unix() / 3600 }

// Track records one handled request.
func (m *Monitor) Track(userID int64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := hourOf(m.now())
	b := m.buckets[h]
	if b == nil {
		b = &bucket{users: make(map[int64]struct{})}
		m.buckets[h] = b
		m.pruneLocked(h)
	}
	b.requests++
	if ok {
		b.successes++
	}
	if userID != 0 {
		b.users[userID] = struct{}{}
	}
}

func (m *Monitor) pruneLocked(current int64) {
	oldest := current - int64(window/time.Hour) + 1
	for h := range m.buckets {
		if h < oldest {
			delete(m.buckets, h)
		}
	}
}

// Snapshot is a point-in-time view of the statistics.
type Snapshot struct {
	HourlyRequests    int
	HourlySuccessRate float64
	HourlyActiveUsers int
	Requests24h       int
	Uptime            time.Duration
	Status            string
}

// Snapshot reports the current hour and the 24 hour total. With no
// requests this hour the success rate is 100.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	h := hourOf(now)
	m.pruneLocked(h)

	s := Snapshot{HourlySuccessRate: 100, Uptime: now.Sub(m.started)}
	if b := m.buckets[h]; b != nil && b.requests > 0 {
		s.HourlyRequests = b.requests
		s.HourlyActiveUsers = len(b.users)
		s.HourlySuccessRate = float64(b.successes) * 100 / float64(b.requests)
	}
	for _, b := range m.buckets {
		s.Requests24h += b.requests
	}
	s.Status = StatusHealthy
	if s.HourlySuccessRate < HealthyRate {
		s.Status = StatusAttention
	}
	return s
}
