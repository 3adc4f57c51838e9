package dialog

import (
	"context"

	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

// deleteChooserSize is how many recent items the delete prompt offers.
const deleteChooserSize = 8

func (e *Engine) startDelete(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapDelete); err != nil {
		return err
	}
	recent, err := e.deps.Catalog.Recent(ctx, deleteChooserSize, 0)
	if err != nil {
		return err
	}
	e.enter(ctx, in, DeleteCode{}, render.DeleteChooser(recent))
	return nil
}

func (e *Engine) deleteCode(ctx context.Context, in Input) error {
	return e.previewDelete(ctx, in, in.Text)
}

// pickDelete jumps from the recent list straight to the preview.
func (e *Engine) pickDelete(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapDelete); err != nil {
		return err
	}
	return e.previewDelete(ctx, in, in.Payload)
}

func (e *Engine) previewDelete(ctx context.Context, in Input, code string) error {
	it, found, err := e.deps.Catalog.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if !found {
		return &domain.Error{Kind: domain.KindNotFound, Op: "dialog.delete", Message: render.ReplyNoSuchCode}
	}
	e.enter(ctx, in, DeletePreview{Code: it.Code, Title: it.Title}, render.DeletePreview(it.Code, it.Title, string(FlowDelete)))
	return nil
}

func (e *Engine) commitDelete(ctx context.Context, in Input, st DeletePreview) error {
	e.states.Clear(in.UserID)
	it, err := e.deps.Catalog.DeleteByCode(ctx, st.Code)
	if domain.IsKind(err, domain.KindNotFound) {
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.NotFound(catalog.Canonical(st.Code))})
		return nil
	}
	if err != nil {
		return err
	}
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.Deleted(it)})
	return nil
}
