package middleware

import (
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

// fakeContext implements the parts of tele.Context the middlewares touch.
type fakeContext struct {
	tele.Context
	mu     sync.Mutex
	update tele.Update
	store  map[string]any
	sent   []any
}

func newFakeContext(userID int64) *fakeContext {
	return &fakeContext{
		update: tele.Update{ID: 1, Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID},
		}},
		store: map[string]any{},
	}
}

func (f *fakeContext) Update() tele.Update { return f.update }
func (f *fakeContext) Sender() *tele.User  { return f.update.Message.Sender }
func (f *fakeContext) Chat() *tele.Chat    { return f.update.Message.Chat }
func (f *fakeContext) Text() string        { return f.update.Message.Text }
func (f *fakeContext) Callback() *tele.Callback {
	return f.update.Callback
}

func (f *fakeContext) Get(key string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store[key]
}

func (f *fakeContext) Set(key string, v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[key] = v
}

func (f *fakeContext) Send(what any, _ ...any) error {
	f.sent = append(f.sent, what)
	return nil
}

func TestRateLimitPerUser(t *testing.T) {
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Now:       func() time.Time { return now },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	_ = h(newFakeContext(1))
	_ = h(newFakeContext(1))
	_ = h(newFakeContext(2))
	now = now.Add(1100 * time.Millisecond)
	_ = h(newFakeContext(1))

	if calls != 3 || limited != 1 {
		t.Fatalf("calls=%d limited=%d, want 3/1", calls, limited)
	}
}

func TestRateLimitExclusion(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for range 3 {
		_ = h(newFakeContext(1))
	}
	if calls != 3 {
		t.Fatalf("excluded updates must pass, calls=%d", calls)
	}
}

func TestRequireCapability(t *testing.T) {
	rejected := 0
	opts := CapabilityOptions{
		Check:    func(c tele.Context, capability string) bool { return c.Sender().ID == 42 && capability == "upload" },
		OnReject: func(tele.Context) error { rejected++; return nil },
	}
	calls := 0
	h := RequireCapability(opts, "upload")(func(tele.Context) error { calls++; return nil })
	_ = h(newFakeContext(42))
	_ = h(newFakeContext(7))
	if calls != 1 || rejected != 1 {
		t.Fatalf("calls=%d rejected=%d, want 1/1", calls, rejected)
	}

	open := RequireCapability(opts, "")(func(tele.Context) error { calls++; return nil })
	_ = open(newFakeContext(7))
	if calls != 2 {
		t.Fatalf("empty capability should pass")
	}
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("kaboom") })
	if err := h(newFakeContext(1)); err == nil {
		t.Fatalf("expected error from recovered panic")
	}
}

func TestMetricsCountSends(t *testing.T) {
	c := newFakeContext(1)
	h := LoggerMiddleware(MessageMetricsMiddleware(func(c tele.Context) error {
		_ = c.Send("one")
		_ = c.Send("two", &tele.ReplyMarkup{})
		return nil
	}))
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	msgs, kb := GetCounters(c)
	if msgs != 2 || !kb {
		t.Fatalf("counters = %d/%v, want 2/true", msgs, kb)
	}
}
