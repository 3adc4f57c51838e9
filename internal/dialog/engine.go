// Package dialog drives the multi-step admin conversations: upload,
// broadcast, admin grants, required channels, the promo channel and delete.
// State is kept per user in memory and is never persisted.
package dialog

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/core/telegram/state"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/render"
)

// Access is the authorization the engine checks on every step.
type Access interface {
	RoleOf(ctx context.Context, id int64) (domain.Role, error)
	Require(ctx context.Context, id int64, c access.Capability) error
	Grant(ctx context.Context, actor, target int64, role domain.Role) error
	Revoke(ctx context.Context, actor, target int64) (domain.Role, error)
}

// Catalog is the item service.
type Catalog interface {
	AddItem(ctx context.Context, it domain.Item) (bool, error)
	FindByCode(ctx context.Context, code string) (domain.Item, bool, error)
	Exists(ctx context.Context, code string) (bool, error)
	DeleteByCode(ctx context.Context, code string) (domain.Item, error)
	AttachDistribution(ctx context.Context, code string, ref domain.MessageRef) error
	Recent(ctx context.Context, limit, offset int) ([]domain.Item, error)
}

// Broadcaster runs a fan-out.
type Broadcaster interface {
	Run(ctx context.Context, p broadcast.Payload) (broadcast.Result, error)
}

// Settings stores required channels and the promo channel.
type Settings interface {
	InsertChannelIfMissing(ctx context.Context, ch domain.Channel) (bool, error)
	DeleteChannel(ctx context.Context, chatID int64) (bool, error)
	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Deps wires the engine.
type Deps struct {
	Access    Access
	Catalog   Catalog
	Broadcast Broadcaster
	Settings  Settings
	Gateway   domain.Gateway

	// DistributionChannelID receives every new item. Zero disables posting.
	DistributionChannelID int64
	// BotUsername is linked from promo announcements.
	BotUsername string
	Now         func() time.Time
}

// Input is one user update as seen by the engine.
type Input struct {
	UserID int64
	ChatID int64
	Name   string
	Text   string
	Media  *domain.Media
	// Message is the incoming message, used for verbatim broadcast copies.
	Message domain.MessageRef
	// ForwardedChat is set when the message was forwarded from a channel.
	ForwardedChat *domain.Channel
	Unique        string
	Payload       string
}

// Engine is safe for concurrent use across users.
type Engine struct {
	deps   Deps
	states *state.Store[State]
}

// New builds an engine over states. A nil states gets a default store.
func New(deps Deps, states *state.Store[State]) *Engine {
	if states == nil {
		states = state.NewStore[State]()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Engine{deps: deps, states: states}
}

// States exposes the store for the sweeper and tests.
func (e *Engine) States() *state.Store[State] { return e.states }

// SetBotUsername fills in the username once the bot is connected.
func (e *Engine) SetBotUsername(name string) { e.deps.BotUsername = name }

// Current returns the live state of userID.
func (e *Engine) Current(userID int64) (State, bool) {
	return e.states.Get(userID)
}

// Handle feeds a text or media message to the user's dialog. It reports
// false when no dialog consumed it, so the caller can fall through to the
// catalog lookup.
func (e *Engine) Handle(ctx context.Context, in Input) (bool, error) {
	st, ok := e.states.Get(in.UserID)
	if !ok {
		if in.Media != nil && e.can(ctx, in.UserID, access.CapUpload) {
			return true, e.settle(ctx, in, FlowUpload, e.uploadShortcut(ctx, in))
		}
		return false, nil
	}
	if err := e.requireFlow(ctx, in.UserID, st.Flow()); err != nil {
		return true, e.settle(ctx, in, st.Flow(), err)
	}
	return true, e.settle(ctx, in, st.Flow(), e.step(ctx, in, st))
}

func (e *Engine) step(ctx context.Context, in Input, st State) error {
	switch s := st.(type) {
	case UploadMedia:
		return e.uploadMedia(ctx, in)
	case UploadDescription:
		return e.uploadDescription(ctx, in, s)
	case UploadCode:
		return e.uploadCode(ctx, in, s)
	case BroadcastForward:
		return e.broadcastForward(ctx, in)
	case BroadcastMedia:
		return e.broadcastMedia(ctx, in)
	case BroadcastText:
		return e.broadcastText(ctx, in, s)
	case GrantAdmin:
		return e.grantAdmin(ctx, in, s)
	case RevokeAdmin:
		return e.revokeAdmin(ctx, in)
	case AddChannel:
		return e.addChannel(ctx, in)
	case PromoChannel:
		return e.setPromo(ctx, in)
	case DeleteCode:
		return e.deleteCode(ctx, in)
	case UploadPreview, BroadcastPreview, DeletePreview:
		return domain.Validation("dialog.preview", render.ReplyUseButtons)
	}
	e.states.Clear(in.UserID)
	return nil
}

// Callback handles a dialog button. It reports false for uniques the
// engine does not own.
func (e *Engine) Callback(ctx context.Context, in Input) (bool, error) {
	var (
		flow Flow
		err  error
	)
	switch in.Unique {
	case render.UniqueUpload:
		flow, err = FlowUpload, e.StartUpload(ctx, in)
	case render.UniqueBroadcastForward:
		flow, err = FlowBroadcast, e.startBroadcast(ctx, in, BroadcastForward{}, render.PromptBroadcastForward, render.CancelKeyboard())
	case render.UniqueBroadcastCompose:
		flow, err = FlowBroadcast, e.startBroadcast(ctx, in, BroadcastMedia{}, render.PromptBroadcastMedia, render.SkipKeyboard())
	case render.UniqueBroadcastSkip:
		flow, err = FlowBroadcast, e.broadcastSkip(ctx, in)
	case render.UniqueGrantJunior:
		flow, err = FlowAdmins, e.startGrant(ctx, in, domain.RoleJunior)
	case render.UniqueGrantHead:
		flow, err = FlowAdmins, e.startGrant(ctx, in, domain.RoleHead)
	case render.UniqueRevoke:
		flow, err = FlowAdmins, e.startRevoke(ctx, in)
	case render.UniqueChannelAdd:
		flow, err = FlowChannels, e.startAddChannel(ctx, in)
	case render.UniqueChannelRemove:
		flow, err = FlowChannels, e.removeChannel(ctx, in)
	case render.UniquePromo:
		flow, err = FlowSettings, e.startPromo(ctx, in)
	case render.UniquePromoClear:
		flow, err = FlowSettings, e.clearPromo(ctx, in)
	case render.UniqueDelete:
		flow, err = FlowDelete, e.startDelete(ctx, in)
	case render.UniqueDeletePick:
		flow, err = FlowDelete, e.pickDelete(ctx, in)
	case render.UniqueConfirm:
		flow, err = e.confirm(ctx, in)
	case render.UniqueCancel:
		return true, e.Cancel(ctx, in)
	default:
		return false, nil
	}
	return true, e.settle(ctx, in, flow, err)
}

func (e *Engine) confirm(ctx context.Context, in Input) (Flow, error) {
	st, ok := e.states.Get(in.UserID)
	if !ok {
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyNothingPending})
		return "", nil
	}
	if err := e.requireFlow(ctx, in.UserID, st.Flow()); err != nil {
		return st.Flow(), err
	}
	// A button left over from another preview must not commit this one.
	if Flow(in.Payload) != st.Flow() {
		return st.Flow(), domain.Validation("dialog.confirm", render.ReplyStaleConfirm)
	}
	switch s := st.(type) {
	case UploadPreview:
		return FlowUpload, e.commitUpload(ctx, in, s)
	case BroadcastPreview:
		return FlowBroadcast, e.runBroadcast(ctx, in, s.Payload)
	case DeletePreview:
		return FlowDelete, e.commitDelete(ctx, in, s)
	}
	return st.Flow(), domain.Validation("dialog.confirm", render.ReplyUseButtons)
}

// Cancel clears any dialog of the user.
func (e *Engine) Cancel(ctx context.Context, in Input) error {
	text := render.ReplyNothingPending
	if e.states.Clear(in.UserID) {
		text = render.ReplyCancelled
	}
	e.reply(ctx, in.ChatID, domain.Outgoing{Text: text})
	logger.Info(ctx, "service.dialog", "dialog.cancel",
		slog.String("status", "ok"),
		slog.Int64("user_id", in.UserID),
	)
	return nil
}

// enter supersedes any dialog of the user with st and sends the prompt.
func (e *Engine) enter(ctx context.Context, in Input, st State, prompt domain.Outgoing) {
	e.states.Set(in.UserID, st)
	logger.Debug(ctx, "service.dialog", "dialog.enter",
		slog.String("flow", string(st.Flow())),
		slog.String("phase", string(st.Phase())),
	)
	e.reply(ctx, in.ChatID, prompt)
}

func (e *Engine) requireFlow(ctx context.Context, userID int64, f Flow) error {
	return e.deps.Access.Require(ctx, userID, f.Capability())
}

func (e *Engine) can(ctx context.Context, userID int64, c access.Capability) bool {
	return e.deps.Access.Require(ctx, userID, c) == nil
}

// settle applies the recovery rule of err's kind. Only storage failures
// are returned to the caller.
func (e *Engine) settle(ctx context.Context, in Input, flow Flow, err error) error {
	if err == nil {
		return nil
	}
	kind := domain.KindOf(err)
	attrs := []slog.Attr{
		slog.String("flow", string(flow)),
		slog.String("err_code", string(kind)),
	}
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindNotFound:
		outcome := map[domain.Kind]string{
			domain.KindValidation: "invalid",
			domain.KindConflict:   "conflict",
			domain.KindNotFound:   "not_found",
		}[kind]
		logger.Info(ctx, "service.dialog", "dialog.reprompt", append(attrs, slog.String("outcome", outcome))...)
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: domain.MessageOf(err)})
		return nil
	case domain.KindAuthorization:
		e.states.Clear(in.UserID)
		logger.Warn(ctx, "service.dialog", "dialog.denied", append(attrs, slog.String("outcome", "denied"))...)
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyDenied})
		return nil
	case domain.KindDelivery:
		logger.Warn(ctx, "service.dialog", "dialog.delivery", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", netutil.RedactErr(err)),
		)...)
		return nil
	default:
		e.states.Clear(in.UserID)
		e.reply(ctx, in.ChatID, domain.Outgoing{Text: render.ReplyStorageFailure})
		return err
	}
}

// reply sends best effort. Delivery failures are logged, never returned.
func (e *Engine) reply(ctx context.Context, chatID int64, out domain.Outgoing) {
	if chatID == 0 {
		return
	}
	if _, err := e.deps.Gateway.Send(ctx, chatID, out); err != nil {
		logger.Warn(ctx, "service.dialog", "dialog.reply",
			slog.String("status", "fail"),
			slog.String("error_kind", netutil.Classify(err)),
			slog.String("err", netutil.RedactErr(err)),
		)
	}
}

func (e *Engine) now() time.Time { return e.deps.Now() }
