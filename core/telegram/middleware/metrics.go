package middleware

import (
	"context"
	"sync/atomic"

	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "metrics_counters"

type countersCtxKey struct{}

// Counters tracks what a single update sent back to Telegram.
type Counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// Record notes one outgoing message.
func (c *Counters) Record(hasKeyboard bool) {
	if c == nil {
		return
	}
	c.messages.Add(1)
	if hasKeyboard {
		c.keyboard.Store(true)
	}
}

// RecordSent notes an outgoing message on the counters carried by ctx, if any.
// Code that sends through the bot directly instead of tele.Context calls it.
func RecordSent(ctx context.Context, hasKeyboard bool) {
	if ctx == nil {
		return
	}
	if c, ok := ctx.Value(countersCtxKey{}).(*Counters); ok {
		c.Record(hasKeyboard)
	}
}

// metricsContext wraps tele.Context to count sent messages and detect keyboard usage.
type metricsContext struct {
	tele.Context
	counters *Counters
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m metricsContext) count(err error, opts []interface{}) error {
	if err == nil {
		m.counters.Record(hasKeyboard(opts))
	}
	return err
}

// Send proxies tele.Context.Send while updating message counters.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.Send(what, opts...), opts)
}

// Reply proxies tele.Context.Reply while updating message counters.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.Reply(what, opts...), opts)
}

// Edit proxies tele.Context.Edit while updating message counters.
func (m metricsContext) Edit(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.Edit(what, opts...), opts)
}

// EditOrSend proxies tele.Context.EditOrSend while updating message counters.
func (m metricsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.EditOrSend(what, opts...), opts)
}

// EditOrReply proxies tele.Context.EditOrReply while updating message counters.
func (m metricsContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return m.count(m.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware attaches per-update counters to both the telebot
// context and the stored request context.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if _, ok := c.Get(countersKey).(*Counters); ok {
			return next(c)
		}
		counters := &Counters{}
		c.Set(countersKey, counters)
		ctx := tghelpers.BuildContext(c)
		tghelpers.StoreContext(c, context.WithValue(ctx, countersCtxKey{}, counters))
		return next(metricsContext{Context: c, counters: counters})
	}
}

// GetCounters reads message count and keyboard presence flags from context.
func GetCounters(c tele.Context) (int, bool) {
	counters, ok := c.Get(countersKey).(*Counters)
	if !ok {
		return 0, false
	}
	return int(counters.messages.Load()), counters.keyboard.Load()
}
