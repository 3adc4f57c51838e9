package app

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/dialog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/gate"
	"github.com/m3rciful/cinebot/internal/render"
)

const (
	titleTop  = "🔥 Popular"
	titleList = "🆕 Newest"
)

// handler is a Telegram-free update handler. The adapters in routes.go
// build its context and input from tele.Context.
type handler func(ctx context.Context, in dialog.Input) error

func (a *App) start(ctx context.Context, in dialog.Input) error {
	admin := a.access.IsAdmin(ctx, in.UserID)
	if !admin {
		kb, err := a.gate.Buttons(ctx, in.UserID)
		if err != nil {
			return a.fail(ctx, in, err)
		}
		if kb != nil {
			return a.send(ctx, in.ChatID, render.Gated(kb))
		}
	}
	return a.send(ctx, in.ChatID, render.Welcome(in.Name, admin))
}

func (a *App) myID(ctx context.Context, in dialog.Input) error {
	return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.MyID(in.UserID)})
}

func (a *App) help(ctx context.Context, in dialog.Input) error {
	return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.Help(a.access.IsAdmin(ctx, in.UserID))})
}

func (a *App) cancel(ctx context.Context, in dialog.Input) error {
	return a.engine.Cancel(ctx, in)
}

func (a *App) panel(ctx context.Context, in dialog.Input) error {
	role, err := a.access.RoleOf(ctx, in.UserID)
	if err != nil {
		return a.fail(ctx, in, err)
	}
	caps := access.CapabilitiesOf(role)
	if !caps.Has(access.CapPanel) {
		return a.fail(ctx, in, domain.Unauthorized("app.panel", "panel required"))
	}
	return a.show(ctx, in, render.Panel(role, caps))
}

func (a *App) closePanel(ctx context.Context, in dialog.Input) error {
	if in.Message.IsZero() {
		return nil
	}
	if err := a.gw.Delete(ctx, in.Message); err != nil {
		logger.Debug(ctx, "tg", "panel.close",
			slog.String("status", "fail"),
			slog.String("error_kind", netutil.Classify(err)),
		)
	}
	return nil
}

// top and list take the page from the command argument or the button payload.
func (a *App) top(ctx context.Context, in dialog.Input) error {
	return a.page(ctx, in, catalog.ByViews, titleTop, render.UniqueTop)
}

func (a *App) list(ctx context.Context, in dialog.Input) error {
	return a.page(ctx, in, catalog.ByRecency, titleList, render.UniqueList)
}

func (a *App) page(ctx context.Context, in dialog.Input, order catalog.Order, title, unique string) error {
	p, err := a.catalog.Page(ctx, order, pageNumber(in), a.cfg.Bot.PageSize)
	if err != nil {
		return a.fail(ctx, in, err)
	}
	return a.show(ctx, in, render.ItemPage(title, p, unique))
}

func pageNumber(in dialog.Input) int {
	raw := in.Payload
	if in.Unique == "" {
		_, raw, _ = strings.Cut(strings.TrimSpace(in.Text), " ")
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (a *App) stats(ctx context.Context, in dialog.Input) error {
	if err := a.access.Require(ctx, in.UserID, access.CapStats); err != nil {
		return a.fail(ctx, in, err)
	}
	st, err := a.store.Stats(ctx)
	if err != nil {
		return a.fail(ctx, in, domain.Storage("app.stats", err))
	}
	return a.show(ctx, in, domain.Outgoing{
		Text:     render.Stats(st, a.monitor.Snapshot()),
		Keyboard: backToPanel(),
	})
}

func (a *App) admins(ctx context.Context, in dialog.Input) error {
	if err := a.access.Require(ctx, in.UserID, access.CapAdmins); err != nil {
		return a.fail(ctx, in, err)
	}
	grants, err := a.access.Admins(ctx)
	if err != nil {
		return a.fail(ctx, in, err)
	}
	canHead := a.access.Can(ctx, in.UserID, access.CapGrantHead)
	return a.show(ctx, in, render.Admins(a.access.SuperAdminID(), grants, canHead))
}

func (a *App) channels(ctx context.Context, in dialog.Input) error {
	if err := a.access.Require(ctx, in.UserID, access.CapChannels); err != nil {
		return a.fail(ctx, in, err)
	}
	chs, err := a.store.ListChannels(ctx)
	if err != nil {
		return a.fail(ctx, in, domain.Storage("app.channels", err))
	}
	return a.show(ctx, in, render.Channels(chs))
}

func (a *App) broadcastMenu(ctx context.Context, in dialog.Input) error {
	if err := a.access.Require(ctx, in.UserID, access.CapBroadcast); err != nil {
		return a.fail(ctx, in, err)
	}
	return a.show(ctx, in, render.BroadcastMenu())
}

// checkSubscription re-runs the gate for the "I've subscribed" button.
func (a *App) checkSubscription(ctx context.Context, in dialog.Input) error {
	missing, err := a.gate.UnsatisfiedChannels(ctx, in.UserID)
	if err != nil {
		return a.fail(ctx, in, err)
	}
	if len(missing) > 0 {
		logger.Info(ctx, "service.gate", "gate.recheck",
			slog.String("outcome", "gated"),
			slog.Int("missing", len(missing)),
		)
		return a.show(ctx, in, render.Gated(gate.ButtonsFor(missing)))
	}
	return a.show(ctx, in, render.Welcome(in.Name, false))
}

// lookup serves free text nobody else consumed as an item code.
func (a *App) lookup(ctx context.Context, in dialog.Input) error {
	code := catalog.Canonical(in.Text)
	if code == "" {
		return nil
	}
	it, found, err := a.catalog.FindByCode(ctx, code)
	if err != nil {
		return a.fail(ctx, in, err)
	}
	if !found {
		logger.Debug(ctx, "service.catalog", "catalog.lookup",
			slog.String("outcome", "not_found"),
		)
		return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.NotFound(format.Truncate(code, catalog.MaxCodeLen))})
	}
	if err := a.send(ctx, in.ChatID, render.ItemMessage(it)); err != nil {
		return err
	}
	if err := a.catalog.IncrementViews(ctx, it.Code); err != nil && !domain.IsKind(err, domain.KindNotFound) {
		logger.Warn(ctx, "service.catalog", "catalog.views",
			slog.String("status", "fail"),
			slog.String("code", it.Code),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

func (a *App) unknownCommand(ctx context.Context, in dialog.Input) error {
	return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyUnknownCommand})
}

func (a *App) unknownMedia(ctx context.Context, in dialog.Input) error {
	return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyUnknownMedia})
}

func (a *App) unknownCallback(ctx context.Context, in dialog.Input) error {
	logger.Debug(ctx, "tg", "callback.unknown", slog.String("cb_key", in.Unique))
	return nil
}

func backToPanel() domain.Keyboard {
	return domain.Keyboard{domain.Row(domain.Button{Text: "⬅️ Panel", Unique: render.UniquePanel})}
}

// show edits the message behind a button, or sends a new one for commands
// and when the edit fails.
func (a *App) show(ctx context.Context, in dialog.Input, out domain.Outgoing) error {
	if in.Unique != "" && !in.Message.IsZero() {
		if err := a.gw.Edit(ctx, in.Message, out); err == nil {
			return nil
		}
	}
	return a.send(ctx, in.ChatID, out)
}

func (a *App) send(ctx context.Context, chatID int64, out domain.Outgoing) error {
	if chatID == 0 {
		return nil
	}
	if _, err := a.gw.Send(ctx, chatID, out); err != nil {
		return domain.Delivery("app.send", err)
	}
	return nil
}

// fail applies the error rules outside a dialog: denials and user mistakes
// get a reply, anything else gets the generic failure reply and is returned.
func (a *App) fail(ctx context.Context, in dialog.Input, err error) error {
	switch domain.KindOf(err) {
	case "":
		return nil
	case domain.KindAuthorization:
		logger.Warn(ctx, "service.access", "access.denied",
			slog.String("outcome", "denied"),
			slog.String("err", err.Error()),
		)
		return a.send(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyDenied})
	case domain.KindValidation, domain.KindNotFound, domain.KindConflict:
		return a.send(ctx, in.ChatID, domain.Outgoing{Text: domain.MessageOf(err)})
	case domain.KindDelivery:
		return err
	default:
		_ = a.send(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyStorageFailure})
		return err
	}
}
