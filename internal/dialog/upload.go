package dialog

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

// StartUpload begins the upload dialog.
func (e *Engine) StartUpload(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapUpload); err != nil {
		return err
	}
	e.enter(ctx, in, UploadMedia{}, domain.Outgoing{Text: render.PromptUploadMedia, Keyboard: render.CancelKeyboard()})
	return nil
}

// uploadShortcut starts at the description step when an uploader sends
// media while idle.
func (e *Engine) uploadShortcut(ctx context.Context, in Input) error {
	e.enter(ctx, in, UploadDescription{Media: *in.Media},
		domain.Outgoing{Text: render.PromptUploadDescription, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) uploadMedia(ctx context.Context, in Input) error {
	if in.Media == nil || !in.Media.Valid() {
		return domain.Validation("dialog.upload.media", render.ReplyNeedMedia)
	}
	e.enter(ctx, in, UploadDescription{Media: *in.Media},
		domain.Outgoing{Text: render.PromptUploadDescription, Keyboard: render.CancelKeyboard()})
	return nil
}

// posterOf returns the file id when in carries a photo.
func posterOf(in Input) (string, bool) {
	if in.Media != nil && in.Media.Kind == domain.MediaPhoto && in.Media.FileID != "" {
		return in.Media.FileID, true
	}
	return "", false
}

func (e *Engine) uploadDescription(ctx context.Context, in Input, st UploadDescription) error {
	if poster, ok := posterOf(in); ok {
		st.Poster = poster
		e.states.Set(in.UserID, st)
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyPosterSaved})
		return nil
	}
	desc := strings.TrimSpace(in.Text)
	if desc == "" {
		return domain.Validation("dialog.upload.description", render.ReplyNeedText)
	}
	e.enter(ctx, in, UploadCode{
		Media:       st.Media,
		Poster:      st.Poster,
		Title:       catalog.TitleOf(desc),
		Description: desc,
	}, domain.Outgoing{Text: render.PromptUploadCode, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) uploadCode(ctx context.Context, in Input, st UploadCode) error {
	if poster, ok := posterOf(in); ok {
		st.Poster = poster
		e.states.Set(in.UserID, st)
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyPosterSaved})
		return nil
	}
	code, err := catalog.ValidateCode(in.Text)
	if err != nil {
		return domain.Validation("dialog.upload.code", "⚠️ Invalid code: "+domain.MessageOf(err)+".\n"+render.PromptUploadCode)
	}
	taken, err := e.deps.Catalog.Exists(ctx, code)
	if err != nil {
		return err
	}
	if taken {
		return domain.Conflict("dialog.upload.code", render.ReplyCodeTaken)
	}
	draft := domain.Item{
		Code:         code,
		Title:        st.Title,
		Description:  st.Description,
		Payload:      st.Media,
		PosterFileID: st.Poster,
		UploaderID:   in.UserID,
	}
	e.enter(ctx, in, UploadPreview{Draft: draft}, render.UploadPreview(draft, string(FlowUpload)))
	return nil
}

func (e *Engine) commitUpload(ctx context.Context, in Input, st UploadPreview) error {
	draft := st.Draft
	draft.UploaderID = in.UserID
	draft.UploadedAt = e.now()
	added, err := e.deps.Catalog.AddItem(ctx, draft)
	if err != nil {
		return err
	}
	if !added {
		e.states.Set(in.UserID, UploadCode{
			Media:       draft.Payload,
			Poster:      draft.PosterFileID,
			Title:       draft.Title,
			Description: draft.Description,
		})
		return domain.Conflict("dialog.upload.confirm", render.ReplyCodeTaken)
	}
	e.states.Clear(in.UserID)
	logger.Info(ctx, "service.dialog", "upload.committed",
		slog.String("status", "ok"),
		slog.String("code", draft.Code),
	)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.Saved(draft)})

	if err := e.distribute(ctx, in, draft); err != nil {
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyDistribution})
		return err
	}
	e.announce(ctx, draft)
	return nil
}

// distribute posts the item to the distribution channel and records the
// post. The item stays committed whatever happens here.
func (e *Engine) distribute(ctx context.Context, in Input, it domain.Item) error {
	if e.deps.DistributionChannelID == 0 {
		return nil
	}
	uploader := in.Name
	if uploader == "" {
		uploader = strconv.FormatInt(in.UserID, 10)
	}
	ref, err := e.deps.Gateway.Send(ctx, e.deps.DistributionChannelID, render.DistributionMessage(it, uploader))
	if err != nil {
		return domain.Delivery("dialog.upload.distribute", err)
	}
	if err := e.deps.Catalog.AttachDistribution(ctx, it.Code, ref); err != nil {
		logger.Warn(ctx, "service.dialog", "upload.distribution_ref",
			slog.String("status", "fail"),
			slog.String("code", it.Code),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

// announce posts to the promo channel when one is configured.
func (e *Engine) announce(ctx context.Context, it domain.Item) {
	raw, ok, err := e.deps.Settings.Setting(ctx, domain.SettingPromoChannel)
	if err != nil || !ok {
		return
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || chatID == 0 {
		return
	}
	if _, err := e.deps.Gateway.Send(ctx, chatID, domain.Outgoing{Text: render.Announcement(it, e.deps.BotUsername)}); err != nil {
		logger.Warn(ctx, "service.dialog", "upload.announce",
			slog.String("status", "fail"),
			slog.String("code", it.Code),
			slog.String("err", err.Error()),
		)
	}
}
