package dialog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

func (e *Engine) startAddChannel(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapChannels); err != nil {
		return err
	}
	e.enter(ctx, in, AddChannel{}, domain.Outgoing{Text: render.PromptChannel, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) startPromo(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapSettings); err != nil {
		return err
	}
	current, _, err := e.deps.Settings.Setting(ctx, domain.SettingPromoChannel)
	if err != nil {
		return domain.Storage("dialog.promo", err)
	}
	e.enter(ctx, in, PromoChannel{}, render.Promo(current))
	return nil
}

// resolveChannel turns a forwarded post, @handle or numeric id into a
// channel the bot can see.
func (e *Engine) resolveChannel(ctx context.Context, in Input) (domain.Channel, error) {
	ref := strings.TrimSpace(in.Text)
	if in.ForwardedChat != nil {
		ref = strconv.FormatInt(in.ForwardedChat.ChatID, 10)
	}
	if ref == "" {
		return domain.Channel{}, domain.Validation("dialog.channel", render.ReplyBadChannel)
	}
	ch, err := e.deps.Gateway.ResolveChannel(ctx, ref)
	if err == nil {
		return ch, nil
	}
	logger.Info(ctx, "service.dialog", "channel.resolve",
		slog.String("status", "fail"),
		slog.String("error_kind", netutil.Classify(err)),
		slog.String("err", netutil.RedactErr(err)),
	)
	if in.ForwardedChat != nil {
		return *in.ForwardedChat, nil
	}
	return domain.Channel{}, domain.Validation("dialog.channel", render.ReplyBadChannel)
}

func (e *Engine) addChannel(ctx context.Context, in Input) error {
	ch, err := e.resolveChannel(ctx, in)
	if err != nil {
		return err
	}
	added, err := e.deps.Settings.InsertChannelIfMissing(ctx, ch)
	if err != nil {
		return domain.Storage("dialog.channel.add", err)
	}
	e.states.Clear(in.UserID)
	text := render.ReplyChannelExists
	if added {
		text = render.ReplyChannelAdded
		logger.Info(ctx, "service.dialog", "channel.added",
			slog.String("status", "ok"),
			slog.Int64("channel_id", ch.ChatID),
		)
	}
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: text})
	return nil
}

func (e *Engine) removeChannel(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapChannels); err != nil {
		return err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(in.Payload), 10, 64)
	if err != nil {
		return domain.Validation("dialog.channel.remove", render.ReplyBadChannel)
	}
	removed, err := e.deps.Settings.DeleteChannel(ctx, id)
	if err != nil {
		return domain.Storage("dialog.channel.remove", err)
	}
	if !removed {
		return &domain.Error{Kind: domain.KindNotFound, Op: "dialog.channel.remove", Message: render.ReplyBadChannel}
	}
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyChannelRemoved})
	return nil
}

func (e *Engine) setPromo(ctx context.Context, in Input) error {
	ch, err := e.resolveChannel(ctx, in)
	if err != nil {
		return err
	}
	if err := e.deps.Settings.SetSetting(ctx, domain.SettingPromoChannel, strconv.FormatInt(ch.ChatID, 10)); err != nil {
		return domain.Storage("dialog.promo.set", err)
	}
	e.states.Clear(in.UserID)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyPromoSet})
	return nil
}

func (e *Engine) clearPromo(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapSettings); err != nil {
		return err
	}
	if err := e.deps.Settings.DeleteSetting(ctx, domain.SettingPromoChannel); err != nil {
		return domain.Storage("dialog.promo.clear", err)
	}
	e.states.Clear(in.UserID)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyPromoCleared})
	return nil
}
