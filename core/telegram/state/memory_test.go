package state

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type phase struct {
	name string
	n    int
}

func TestStoreSetOverwrites(t *testing.T) {
	s := NewStore[phase]()
	s.Set(1, phase{name: "a", n: 1})
	s.Set(1, phase{name: "b"})

	got, ok := s.Get(1)
	if !ok || got.name != "b" || got.n != 0 {
		t.Fatalf("get = %+v/%v, want overwritten value", got, ok)
	}
	if _, ok := s.Get(2); ok {
		t.Fatalf("unknown user should have no state")
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore[phase]()
	s.Set(1, phase{name: "a"})
	if !s.Clear(1) {
		t.Fatalf("clear should report a live entry")
	}
	if s.Active(1) {
		t.Fatalf("state should be gone")
	}
	if s.Clear(1) {
		t.Fatalf("second clear should report nothing removed")
	}
}

func TestStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	var evicted []int64
	s := NewStore[phase](
		WithTTL(time.Minute),
		WithClock(clock.Now),
		WithEvictHook(func(id int64) { evicted = append(evicted, id) }),
	)
	s.Set(1, phase{name: "old"})
	clock.Advance(30 * time.Second)
	s.Set(2, phase{name: "fresh"})
	clock.Advance(31 * time.Second)

	if s.Active(1) {
		t.Fatalf("entry 1 should have expired")
	}
	if !s.Active(2) {
		t.Fatalf("entry 2 should still be live")
	}
	if s.Len() != 2 {
		t.Fatalf("expired entries stay until swept, len = %d", s.Len())
	}
	if n := s.Sweep(); n != 1 {
		t.Fatalf("sweep removed %d, want 1", n)
	}
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Fatalf("evict hook got %v", evicted)
	}
}

func TestStoreSetRefreshesExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewStore[phase](WithTTL(time.Minute), WithClock(clock.Now))
	s.Set(1, phase{name: "a"})
	clock.Advance(50 * time.Second)
	s.Set(1, phase{name: "b"})
	clock.Advance(50 * time.Second)
	if !s.Active(1) {
		t.Fatalf("set should refresh expiry")
	}
}

func TestStoreZeroTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := NewStore[phase](WithTTL(0), WithClock(clock.Now))
	s.Set(1, phase{})
	clock.Advance(1000 * time.Hour)
	if !s.Active(1) || s.Sweep() != 0 {
		t.Fatalf("zero ttl must disable expiry")
	}
}

func TestStoreRunStopsWithContext(t *testing.T) {
	s := NewStore[phase](WithTTL(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	s.Set(1, phase{})
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("run did not stop")
	}
}
