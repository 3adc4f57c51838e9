package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/callbacks"
	"github.com/m3rciful/cinebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// Dialog is offered every button without a registered handler. It
	// reports whether a dialog owned the button.
	Dialog   func(c tele.Context) (bool, error)
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry,
// then the dialog, then the not-found fallback. The callback is acknowledged
// before any of them runs, so handlers report results with messages rather
// than callback alerts.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}
		_ = c.Respond()
		return dispatchCallback(c, reg, opts, start)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

func dispatchCallback(c tele.Context, reg *tg.Registry, opts CallbackOptions, start time.Time) error {
	key, payload := callbacks.ParseCallbackData(c.Callback())
	name := normalizeHandlerName(key)
	extras := []slog.Attr{slog.String("cb_key", key)}

	if h, ok := reg.GetCallback(key); ok && h != nil {
		return handleWithSummary(c, "callback."+name, start, "", "", func() error {
			return h(c)
		}, extras...)
	}

	if opts.Dialog != nil {
		if consumed, err := opts.Dialog(c); consumed {
			logHandlerSummary(c, "dialog."+name, start, "", "", err,
				append(extras, slog.String("cb_payload", payload))...)
			return err
		}
	}

	fallback := reg.CallbackNotFound()
	if fallback == nil {
		fallback = opts.NotFound
	}
	extras = append(extras, slog.String("reason", "not_found"))
	return handleWithSummary(c, "callback."+name, start, "skip", "", func() error {
		if fallback != nil {
			return fallback(c)
		}
		return nil
	}, extras...)
}
