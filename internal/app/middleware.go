package app

import (
	"context"
	"log/slog"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/internal/dialog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/gate"
	"github.com/m3rciful/cinebot/internal/render"

	tele "gopkg.in/telebot.v4"
)

// touchMiddleware records the sender and their last activity. Storage
// failures are logged and the update continues.
func (a *App) touchMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if u := c.Sender(); u != nil && !u.IsBot {
			ctx := tghelpers.BuildContext(c)
			a.touch(ctx, domain.User{ID: u.ID, DisplayName: displayName(u), Handle: u.Username})
		}
		return next(c)
	}
}

func (a *App) touch(ctx context.Context, u domain.User) {
	if err := a.store.UpsertUser(ctx, u); err != nil {
		logger.Warn(ctx, "service.catalog", "user.touch",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}

// monitorMiddleware counts every update and whether it succeeded.
func (a *App) monitorMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := next(c)
		var userID int64
		if u := c.Sender(); u != nil {
			userID = u.ID
		}
		a.monitor.Track(userID, err == nil)
		return err
	}
}

// gateMiddleware stops users who have not joined the required channels.
// Admins and the allow-listed commands pass.
func (a *App) gateMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		u := c.Sender()
		if u == nil {
			return next(c)
		}
		var cb string
		if c.Callback() != nil {
			cb = callbacks.CallbackKey(c)
		}
		if gate.Allowed(commandOf(c), cb) {
			return next(c)
		}
		ctx := tghelpers.BuildContext(c)
		if pass, err := a.admit(ctx, inputOf(c)); !pass {
			if c.Callback() != nil {
				_ = c.Respond()
			}
			return err
		}
		return next(c)
	}
}

// admit reports whether in may proceed. A gated user is sent the join
// buttons. Admins are never gated.
func (a *App) admit(ctx context.Context, in dialog.Input) (bool, error) {
	if a.access.IsAdmin(ctx, in.UserID) {
		return true, nil
	}
	kb, err := a.gate.Buttons(ctx, in.UserID)
	if err != nil {
		return false, a.fail(ctx, in, err)
	}
	if kb == nil {
		return true, nil
	}
	logger.Info(ctx, "service.gate", "gate.blocked",
		slog.String("status", "skip"),
		slog.String("outcome", "gated"),
		slog.Int("buttons", len(kb)),
	)
	return false, a.send(ctx, in.ChatID, render.Gated(kb))
}

func (a *App) denied(ctx context.Context, in dialog.Input) error {
	return a.fail(ctx, in, domain.Unauthorized("app.command", "capability required"))
}
