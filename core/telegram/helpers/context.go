package helpers

import (
	"context"

	"github.com/m3rciful/cinebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ctxKey is where the per-update context is kept on tele.Context.
const ctxKey = "cinebot.ctx"

// StoreContext keeps ctx on c so later middlewares and handlers share it.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(ctxKey, ctx)
	}
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(ctxKey).(context.Context)
	return ctx, ok && ctx != nil
}

// ids returns the update, chat and sender ids of c. Missing parts are zero.
func ids(c tele.Context) (update int, chat, user int64) {
	update = c.Update().ID
	if ch := c.Chat(); ch != nil {
		chat = ch.ID
	}
	if u := c.Sender(); u != nil {
		user = u.ID
	}
	return update, chat, user
}

// BuildContext returns the per-update context carrying the request id and
// the update, user and chat ids every service log line is keyed by. It is
// built once per update and cached on c.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}
	update, chat, user := ids(c)
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(update, chat, user)
	}
	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, update, user, chat)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	StoreContext(c, ctx)
	return ctx
}

// WithHandler adds the handler name to the update context.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler != "" {
		ctx = logger.WithHandler(ctx, handler)
		StoreContext(c, ctx)
	}
	return ctx
}
