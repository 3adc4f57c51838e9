package dialog

import (
	"context"
	"strings"

	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

func (e *Engine) startBroadcast(ctx context.Context, in Input, st State, prompt string, kb domain.Keyboard) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapBroadcast); err != nil {
		return err
	}
	e.enter(ctx, in, st, domain.Outgoing{Text: prompt, Keyboard: kb})
	return nil
}

// broadcastForward copies whatever the admin sent to every user.
func (e *Engine) broadcastForward(ctx context.Context, in Input) error {
	if in.Message.IsZero() {
		return domain.Validation("dialog.broadcast.forward", render.ReplyNeedText)
	}
	return e.runBroadcast(ctx, in, broadcast.Forward(in.Message))
}

func (e *Engine) broadcastMedia(ctx context.Context, in Input) error {
	if in.Media == nil || !in.Media.Valid() {
		return domain.Validation("dialog.broadcast.media", render.ReplyNeedMedia)
	}
	media := *in.Media
	e.enter(ctx, in, BroadcastText{Media: &media}, domain.Outgoing{Text: render.PromptBroadcastText, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) broadcastSkip(ctx context.Context, in Input) error {
	st, ok := e.states.Get(in.UserID)
	if !ok {
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyNothingPending})
		return nil
	}
	if err := e.requireFlow(ctx, in.UserID, st.Flow()); err != nil {
		return err
	}
	if _, ok := st.(BroadcastMedia); !ok {
		return domain.Validation("dialog.broadcast.skip", render.ReplyUseButtons)
	}
	e.enter(ctx, in, BroadcastText{}, domain.Outgoing{Text: render.PromptBroadcastText, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) broadcastText(ctx context.Context, in Input, st BroadcastText) error {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Validation("dialog.broadcast.text", render.ReplyNeedText)
	}
	payload := broadcast.Payload{Message: domain.Outgoing{Text: format.Escape(text), Media: st.Media}}
	e.states.Set(in.UserID, BroadcastPreview{Payload: payload})
	e.reply(ctx, in.ChatID, payload.Message)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.PromptBroadcastConfirm, Keyboard: render.ConfirmKeyboard("📣 Send", string(FlowBroadcast))})
	return nil
}

func (e *Engine) runBroadcast(ctx context.Context, in Input, p broadcast.Payload) error {
	e.states.Clear(in.UserID)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyBroadcastStart})
	res, err := e.deps.Broadcast.Run(ctx, p)
	if err != nil {
		return err
	}
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.BroadcastReport(res)})
	return nil
}
