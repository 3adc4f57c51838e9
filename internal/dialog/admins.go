package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

func (e *Engine) startGrant(ctx context.Context, in Input, role domain.Role) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapAdmins); err != nil {
		return err
	}
	if role == domain.RoleHead {
		if err := e.deps.Access.Require(ctx, in.UserID, access.CapGrantHead); err != nil {
			return err
		}
	}
	e.enter(ctx, in, GrantAdmin{Role: role}, domain.Outgoing{Text: render.PromptAdminID, Keyboard: render.CancelKeyboard()})
	return nil
}

func (e *Engine) startRevoke(ctx context.Context, in Input) error {
	if err := e.deps.Access.Require(ctx, in.UserID, access.CapAdmins); err != nil {
		return err
	}
	e.enter(ctx, in, RevokeAdmin{}, domain.Outgoing{Text: render.PromptRevokeID, Keyboard: render.CancelKeyboard()})
	return nil
}

func parseUserID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validation("dialog.admins.id", render.ReplyBadID)
	}
	return id, nil
}

func (e *Engine) grantAdmin(ctx context.Context, in Input, st GrantAdmin) error {
	target, err := parseUserID(in.Text)
	if err != nil {
		return err
	}
	if err := e.deps.Access.Grant(ctx, in.UserID, target, st.Role); err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			return domain.Validation("dialog.admins.grant", "⚠️ "+domain.MessageOf(err))
		}
		return err
	}
	e.states.Clear(in.UserID)
	idText := format.Code(strconv.FormatInt(target, 10))
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: fmt.Sprintf("✅ %s is now %s.", idText, format.Escape(st.Role.String()))})
	e.reply(ctx, target, domain.Outgoing{Text: fmt.Sprintf("🎉 You were granted %s. Open /panel.", format.Escape(st.Role.String()))})
	return nil
}

func (e *Engine) revokeAdmin(ctx context.Context, in Input) error {
	target, err := parseUserID(in.Text)
	if err != nil {
		return err
	}
	prev, err := e.deps.Access.Revoke(ctx, in.UserID, target)
	switch {
	case domain.IsKind(err, domain.KindNotFound):
		return &domain.Error{Kind: domain.KindNotFound, Op: "dialog.admins.revoke", Message: render.ReplyNotAdmin}
	case domain.IsKind(err, domain.KindValidation):
		return domain.Validation("dialog.admins.revoke", "⚠️ "+domain.MessageOf(err))
	case err != nil:
		return err
	}
	e.states.Clear(in.UserID)
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: fmt.Sprintf("✅ %s is no longer %s.",
		format.Code(strconv.FormatInt(target, 10)), format.Escape(prev.String()))})
	return nil
}
