package dialog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/core/telegram/state"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/dialog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/gateway/gatewaytest"
	"github.com/m3rciful/cinebot/internal/render"
	"github.com/m3rciful/cinebot/internal/store"
	"github.com/m3rciful/cinebot/internal/store/storetest"
)

const (
	superID   = 42
	distChat  = -100500
	promoChat = -100600
)

type harness struct {
	engine  *dialog.Engine
	gw      *gatewaytest.Fake
	store   *store.Store
	catalog *catalog.Service
	access  *access.Resolver
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := storetest.New(t)
	gw := gatewaytest.New()
	res := access.NewResolver(st, superID)
	cat := catalog.NewService(st, gw)
	bc := broadcast.NewService(st, gw, broadcast.Options{Concurrency: 2, PerSecond: 1000, Burst: 10})
	eng := dialog.New(dialog.Deps{
		Access:                res,
		Catalog:               cat,
		Broadcast:             bc,
		Settings:              st,
		Gateway:               gw,
		DistributionChannelID: distChat,
		BotUsername:           "cinebot",
	}, state.NewStore[dialog.State]())
	return &harness{engine: eng, gw: gw, store: st, catalog: cat, access: res}
}

func text(user int64, s string) dialog.Input {
	return dialog.Input{UserID: user, ChatID: user, Name: "Admin", Text: s}
}

func media(user int64, kind domain.MediaKind, id string) dialog.Input {
	return dialog.Input{UserID: user, ChatID: user, Media: &domain.Media{Kind: kind, FileID: id}}
}

func button(user int64, unique, payload string) dialog.Input {
	return dialog.Input{UserID: user, ChatID: user, Unique: unique, Payload: payload}
}

func (h *harness) phase(t *testing.T, user int64) dialog.Phase {
	t.Helper()
	st, ok := h.engine.Current(user)
	if !ok {
		return ""
	}
	return st.Phase()
}

func (h *harness) callback(t *testing.T, in dialog.Input) {
	t.Helper()
	consumed, err := h.engine.Callback(context.Background(), in)
	require.NoError(t, err)
	require.True(t, consumed)
}

func (h *harness) send(t *testing.T, in dialog.Input) {
	t.Helper()
	consumed, err := h.engine.Handle(context.Background(), in)
	require.NoError(t, err)
	require.True(t, consumed)
}

func confirm(user int64, flow dialog.Flow) dialog.Input {
	return button(user, render.UniqueConfirm, string(flow))
}

func (h *harness) upload(t *testing.T, user int64, code string) {
	h.callback(t, button(user, render.UniqueUpload, ""))
	h.send(t, media(user, domain.MediaVideo, "vid-"+code))
	h.send(t, text(user, "Test"))
	h.send(t, text(user, code))
}

func TestUploadEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.upload(t, superID, "abc1")
	require.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))
	h.callback(t, confirm(superID, dialog.FlowUpload))

	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))
	it, found, err := h.catalog.FindByCode(ctx, "abc1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ABC1", it.Code)
	assert.Equal(t, "Test", it.Title)
	assert.Equal(t, int64(superID), it.UploaderID)
	n, err := h.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	posts := h.gw.SentTo(distChat)
	require.Len(t, posts, 1)
	assert.Equal(t, posts[0].Ref, it.Distribution)

	h.upload(t, superID, "ABC1")
	assert.Equal(t, dialog.PhaseAwaitingCode, h.phase(t, superID))
	last, ok := h.gw.Last(superID)
	require.True(t, ok)
	assert.Equal(t, render.ReplyCodeTaken, last.Msg.Text)
	n, err = h.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEmptyDescriptionKeepsPhase(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.callback(t, button(superID, render.UniqueUpload, ""))
	h.send(t, media(superID, domain.MediaVideo, "v"))
	h.send(t, text(superID, "   "))

	assert.Equal(t, dialog.PhaseAwaitingDescription, h.phase(t, superID))
	n, err := h.catalog.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUploadValidationAndPoster(t *testing.T) {
	h := newHarness(t)
	h.callback(t, button(superID, render.UniqueUpload, ""))

	h.send(t, text(superID, "no media here"))
	assert.Equal(t, dialog.PhaseAwaitingMedia, h.phase(t, superID))

	h.send(t, media(superID, domain.MediaDocument, "doc"))
	h.send(t, media(superID, domain.MediaPhoto, "poster"))
	assert.Equal(t, dialog.PhaseAwaitingDescription, h.phase(t, superID))

	h.send(t, text(superID, "Title\nbody"))
	h.send(t, text(superID, "a!"))
	assert.Equal(t, dialog.PhaseAwaitingCode, h.phase(t, superID))

	h.send(t, text(superID, "good1"))
	st, ok := h.engine.Current(superID)
	require.True(t, ok)
	preview := st.(dialog.UploadPreview)
	assert.Equal(t, "poster", preview.Draft.PosterFileID)
	assert.Equal(t, "GOOD1", preview.Draft.Code)

	h.send(t, text(superID, "stray text"))
	assert.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))
}

func TestIdleMediaShortcut(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	consumed, err := h.engine.Handle(ctx, media(7, domain.MediaVideo, "v"))
	require.NoError(t, err)
	assert.False(t, consumed, "regular users fall through")

	h.send(t, media(superID, domain.MediaVideo, "v"))
	assert.Equal(t, dialog.PhaseAwaitingDescription, h.phase(t, superID))

	consumed, err = h.engine.Handle(ctx, text(7, "ABC1"))
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestSupersessionAndCancel(t *testing.T) {
	h := newHarness(t)
	h.callback(t, button(superID, render.UniqueUpload, ""))
	h.callback(t, button(superID, render.UniqueDelete, ""))
	assert.Equal(t, dialog.PhaseAwaitingDeleteCode, h.phase(t, superID))

	h.callback(t, button(superID, render.UniqueCancel, ""))
	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))
	last, _ := h.gw.Last(superID)
	assert.Equal(t, render.ReplyCancelled, last.Msg.Text)
}

func TestLostCapabilityClearsState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.access.Grant(ctx, superID, 5, domain.RoleJunior))
	h.callback(t, button(5, render.UniqueUpload, ""))
	assert.Equal(t, dialog.PhaseAwaitingMedia, h.phase(t, 5))

	_, err := h.access.Revoke(ctx, superID, 5)
	require.NoError(t, err)

	h.send(t, media(5, domain.MediaVideo, "v"))
	assert.Equal(t, dialog.Phase(""), h.phase(t, 5))
	last, _ := h.gw.Last(5)
	assert.Equal(t, render.ReplyDenied, last.Msg.Text)
}

func TestJuniorCannotStartBroadcast(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.access.Grant(ctx, superID, 5, domain.RoleJunior))
	h.callback(t, button(5, render.UniqueBroadcastCompose, ""))
	assert.Equal(t, dialog.Phase(""), h.phase(t, 5))
	last, _ := h.gw.Last(5)
	assert.Equal(t, render.ReplyDenied, last.Msg.Text)
}

func TestBroadcastCompose(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for _, id := range []int64{1, 2, 3} {
		require.NoError(t, h.store.UpsertUser(ctx, domain.User{ID: id}))
	}
	h.gw.Fail[2] = gatewaytest.ErrBlocked

	h.callback(t, button(superID, render.UniqueBroadcastCompose, ""))
	h.callback(t, button(superID, render.UniqueBroadcastSkip, ""))
	assert.Equal(t, dialog.PhaseAwaitingText, h.phase(t, superID))
	h.send(t, text(superID, "Hello <all>"))
	assert.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))
	h.callback(t, confirm(superID, dialog.FlowBroadcast))

	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))
	assert.Len(t, h.gw.SentTo(1), 1)
	assert.Len(t, h.gw.SentTo(3), 1)
	assert.Equal(t, "Hello &lt;all&gt;", h.gw.SentTo(1)[0].Msg.Text)
	last, _ := h.gw.Last(superID)
	assert.Contains(t, last.Msg.Text, "Delivered: 2")
	assert.Contains(t, last.Msg.Text, "Failed: 1")
}

func TestBroadcastForwardCopies(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.store.UpsertUser(ctx, domain.User{ID: 1}))

	h.callback(t, button(superID, render.UniqueBroadcastForward, ""))
	in := text(superID, "anything")
	in.Message = domain.MessageRef{ChatID: superID, MessageID: 77}
	h.send(t, in)

	sent := h.gw.SentTo(1)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Copy)
	assert.Equal(t, 77, sent[0].Copy.MessageID)
}

func TestBroadcastForwardCopiesAnyMessage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, h.store.UpsertUser(ctx, domain.User{ID: 1}))

	// A voice note or sticker reaches the engine with no text and no
	// catalog media, only the reference to copy.
	h.callback(t, button(superID, render.UniqueBroadcastForward, ""))
	h.send(t, dialog.Input{UserID: superID, ChatID: superID, Message: domain.MessageRef{ChatID: superID, MessageID: 80}})

	h.callback(t, button(superID, render.UniqueBroadcastForward, ""))
	video := media(superID, domain.MediaVideo, "clip")
	video.Message = domain.MessageRef{ChatID: superID, MessageID: 81}
	h.send(t, video)

	sent := h.gw.SentTo(1)
	require.Len(t, sent, 2)
	for i, want := range []int{80, 81} {
		require.NotNil(t, sent[i].Copy)
		assert.Equal(t, want, sent[i].Copy.MessageID)
		assert.Nil(t, sent[i].Msg.Media, "forwarded messages are copied, not re-sent")
	}
	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))
}

func TestConfirmFromAnotherPreviewIsRejected(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.catalog.AddItem(ctx, domain.Item{Code: "ABC1", Description: "x", Payload: domain.Media{Kind: domain.MediaVideo, FileID: "f"}, UploadedAt: time.Now()})
	require.NoError(t, err)
	for _, id := range []int64{1, 2} {
		require.NoError(t, h.store.UpsertUser(ctx, domain.User{ID: id}))
	}

	h.callback(t, button(superID, render.UniqueDelete, ""))
	h.callback(t, button(superID, render.UniqueDeletePick, "ABC1"))
	h.callback(t, button(superID, render.UniqueBroadcastCompose, ""))
	h.callback(t, button(superID, render.UniqueBroadcastSkip, ""))
	h.send(t, text(superID, "Draft"))
	require.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))

	for _, stale := range []dialog.Input{confirm(superID, dialog.FlowDelete), button(superID, render.UniqueConfirm, "")} {
		h.callback(t, stale)
		last, _ := h.gw.Last(superID)
		assert.Equal(t, render.ReplyStaleConfirm, last.Msg.Text)
	}
	assert.Empty(t, h.gw.SentTo(1))
	assert.Empty(t, h.gw.SentTo(2))
	_, found, err := h.catalog.FindByCode(ctx, "ABC1")
	require.NoError(t, err)
	assert.True(t, found)

	st, ok := h.engine.Current(superID)
	require.True(t, ok)
	assert.IsType(t, dialog.BroadcastPreview{}, st)

	h.callback(t, confirm(superID, dialog.FlowBroadcast))
	assert.Len(t, h.gw.SentTo(1), 1)
	assert.Len(t, h.gw.SentTo(2), 1)
}

func TestDeleteFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, err := h.catalog.AddItem(ctx, domain.Item{Code: "DEL1", Description: "x", Payload: domain.Media{Kind: domain.MediaVideo, FileID: "f"}, UploadedAt: time.Now()})
	require.NoError(t, err)

	h.callback(t, button(superID, render.UniqueDelete, ""))
	h.send(t, text(superID, "nope1"))
	assert.Equal(t, dialog.PhaseAwaitingDeleteCode, h.phase(t, superID))

	h.callback(t, button(superID, render.UniqueDeletePick, "DEL1"))
	assert.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))
	h.callback(t, confirm(superID, dialog.FlowDelete))

	_, found, err := h.catalog.FindByCode(ctx, "DEL1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))
}

func TestGrantFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.callback(t, button(superID, render.UniqueGrantHead, ""))
	h.send(t, text(superID, "abc"))
	assert.Equal(t, dialog.PhaseAwaitingAdminID, h.phase(t, superID))
	h.send(t, text(superID, "77"))
	assert.Equal(t, dialog.Phase(""), h.phase(t, superID))

	role, err := h.access.RoleOf(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHead, role)
	assert.Len(t, h.gw.SentTo(77), 1)

	h.callback(t, button(77, render.UniqueGrantHead, ""))
	last, _ := h.gw.Last(77)
	assert.Equal(t, render.ReplyDenied, last.Msg.Text)

	h.callback(t, button(77, render.UniqueRevoke, ""))
	h.send(t, text(77, "12345"))
	assert.Equal(t, dialog.PhaseAwaitingRevokeID, h.phase(t, 77))
}

func TestChannelsAndPromo(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.gw.Channels["@news"] = domain.Channel{ChatID: -1001, Handle: "news", Title: "News"}
	h.gw.Channels["@promo"] = domain.Channel{ChatID: promoChat, Handle: "promo"}

	h.callback(t, button(superID, render.UniqueChannelAdd, ""))
	h.send(t, text(superID, "@missing"))
	assert.Equal(t, dialog.PhaseAwaitingChannel, h.phase(t, superID))
	h.send(t, text(superID, "@news"))
	chs, err := h.store.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, chs, 1)
	assert.Equal(t, "News", chs[0].Title)

	h.callback(t, button(superID, render.UniqueChannelRemove, "-1001"))
	chs, err = h.store.ListChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, chs)

	h.callback(t, button(superID, render.UniquePromo, ""))
	fwd := text(superID, "")
	fwd.ForwardedChat = &domain.Channel{ChatID: promoChat}
	h.send(t, fwd)
	v, ok, err := h.store.Setting(ctx, domain.SettingPromoChannel)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "-100600", v)

	h.upload(t, superID, "new1")
	h.callback(t, confirm(superID, dialog.FlowUpload))
	promo := h.gw.SentTo(promoChat)
	require.Len(t, promo, 1)
	assert.Contains(t, promo[0].Msg.Text, "NEW1")
}

func TestDistributionFailureKeepsItem(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.gw.Fail[distChat] = gatewaytest.ErrBlocked
	h.upload(t, superID, "keep1")
	h.callback(t, confirm(superID, dialog.FlowUpload))

	it, found, err := h.catalog.FindByCode(ctx, "KEEP1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, it.Distribution.IsZero())
	last, _ := h.gw.Last(superID)
	assert.Equal(t, render.ReplyDistribution, last.Msg.Text)
}

func TestUnknownCallbackIsNotConsumed(t *testing.T) {
	h := newHarness(t)
	consumed, err := h.engine.Callback(context.Background(), button(superID, "top", "2"))
	require.NoError(t, err)
	assert.False(t, consumed)
}

func TestTextDuringPreviewKeepsPreview(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.upload(t, superID, "pre1")

	consumed, err := h.engine.Handle(ctx, text(superID, "OTHER1"))
	require.NoError(t, err)
	assert.True(t, consumed, "text in a preview is not a catalog lookup")
	assert.Equal(t, dialog.PhasePreviewPending, h.phase(t, superID))
	last, _ := h.gw.Last(superID)
	assert.Equal(t, render.ReplyUseButtons, last.Msg.Text)

	h.callback(t, confirm(superID, dialog.FlowUpload))
	_, found, err := h.catalog.FindByCode(ctx, "PRE1")
	require.NoError(t, err)
	assert.True(t, found)
}
