package helpers

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by Notify.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// SendHTML replies in the current chat with HTML parse mode.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return c.Send(text, opts)
}

// Notify sends text without waiting for the result. It is meant for replies
// nobody depends on, such as rate limit notices. Without a dispatcher, or when
// its queue is saturated, the message is sent inline.
func Notify(c tele.Context, text string) error {
	run := func(context.Context) error { return SendHTML(c, text) }
	disp := globalDispatcher.Load()
	if disp == nil {
		return run(context.Background())
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, sender.Job{Action: "notify", Endpoint: "sendMessage", Run: run})
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "notify"),
			slog.String("err", err.Error()),
		)
		return run(ctx)
	}
	return err
}
