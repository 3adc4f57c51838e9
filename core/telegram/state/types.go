package state

import "time"

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

type entry[S any] struct {
	value     S
	updatedAt time.Time
}

// Option configures a Store.
type Option func(*options)

type options struct {
	ttl     time.Duration
	clock   Clock
	onEvict func(userID int64)
}

// WithTTL sets how long an untouched entry survives. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithEvictHook is called for every entry removed by expiry.
func WithEvictHook(fn func(userID int64)) Option {
	return func(o *options) { o.onEvict = fn }
}
