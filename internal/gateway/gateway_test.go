package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

type call struct {
	to   string
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	calls   []call
	failOn  interface{}
	member  *tele.ChatMember
	chat    *tele.Chat
	invite  string
	deleted []tele.Editable
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, call{to: to.Recipient(), what: what, opts: opts})
	if f.failOn != nil && what == f.failOn {
		return nil, errors.New("boom")
	}
	return &tele.Message{ID: len(f.calls), Chat: &tele.Chat{ID: 99}}, nil
}

func (f *fakeAPI) Copy(to tele.Recipient, msg tele.Editable, _ ...interface{}) (*tele.Message, error) {
	f.calls = append(f.calls, call{to: to.Recipient(), what: msg})
	return &tele.Message{ID: 500}, nil
}

func (f *fakeAPI) Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error) {
	return &tele.Message{}, nil
}

func (f *fakeAPI) Delete(msg tele.Editable) error {
	f.deleted = append(f.deleted, msg)
	return nil
}

func (f *fakeAPI) ChatMemberOf(_, _ tele.Recipient) (*tele.ChatMember, error) {
	if f.member == nil {
		return nil, errors.New("chat not found")
	}
	return f.member, nil
}

func (f *fakeAPI) ChatByUsername(name string) (*tele.Chat, error) {
	if f.chat == nil {
		return nil, errors.New("chat not found: " + name)
	}
	return f.chat, nil
}

func (f *fakeAPI) InviteLink(*tele.Chat) (string, error) { return f.invite, nil }

func TestUnboundGateway(t *testing.T) {
	_, err := New().Send(context.Background(), 1, domain.Outgoing{Text: "x"})
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestSendTextWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	g := New()
	g.Bind(api)

	ref, err := g.Send(context.Background(), 7, domain.Outgoing{
		Text:     "<b>hi</b>",
		Keyboard: domain.Keyboard{domain.Row(domain.Button{Text: "Go", Unique: "go", Payload: "1"})},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRef{ChatID: 99, MessageID: 1}, ref)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "7", api.calls[0].to)
	opts := api.calls[0].opts[0].(*tele.SendOptions)
	assert.Equal(t, tele.ModeHTML, opts.ParseMode)
	require.NotNil(t, opts.ReplyMarkup)
	assert.Len(t, opts.ReplyMarkup.InlineKeyboard, 1)
}

func TestSendMediaWithPoster(t *testing.T) {
	api := &fakeAPI{}
	g := New()
	g.Bind(api)
	media := domain.Media{Kind: domain.MediaVideo, FileID: "vid"}

	_, err := g.Send(context.Background(), 7, domain.Outgoing{Text: "cap", Media: &media, Poster: "pst"})
	require.NoError(t, err)
	require.Len(t, api.calls, 2)
	poster := api.calls[0].what.(*tele.Photo)
	assert.Equal(t, "pst", poster.FileID)
	video := api.calls[1].what.(*tele.Video)
	assert.Equal(t, "vid", video.FileID)
	assert.Equal(t, "cap", video.Caption)
}

func TestSendableKinds(t *testing.T) {
	for kind, want := range map[domain.MediaKind]interface{}{
		domain.MediaDocument:  &tele.Document{},
		domain.MediaAnimation: &tele.Animation{},
		domain.MediaAudio:     &tele.Audio{},
		domain.MediaPhoto:     &tele.Photo{},
	} {
		m := domain.Media{Kind: kind, FileID: "f"}
		assert.IsType(t, want, Sendable(domain.Outgoing{Media: &m}), kind)
	}
	assert.Equal(t, "plain", Sendable(domain.Outgoing{Text: "plain"}))
}

func TestMembershipMapping(t *testing.T) {
	api := &fakeAPI{}
	g := New()
	g.Bind(api)
	ctx := context.Background()

	_, err := g.Membership(ctx, -1, 7)
	require.Error(t, err)

	api.member = &tele.ChatMember{Role: tele.Restricted, Member: true}
	st, err := g.Membership(ctx, -1, 7)
	require.NoError(t, err)
	assert.True(t, st.Subscribed())

	api.member = &tele.ChatMember{Role: tele.Restricted}
	st, err = g.Membership(ctx, -1, 7)
	require.NoError(t, err)
	assert.False(t, st.Subscribed())

	api.member = &tele.ChatMember{Role: tele.Administrator}
	st, _ = g.Membership(ctx, -1, 7)
	assert.True(t, st.Subscribed())
}

func TestResolveChannelFallsBackToInviteLink(t *testing.T) {
	api := &fakeAPI{chat: &tele.Chat{ID: -1001, Title: "Private"}, invite: "https://t.me/+abc"}
	g := New()
	g.Bind(api)
	ch, err := g.ResolveChannel(context.Background(), "-1001")
	require.NoError(t, err)
	assert.Equal(t, int64(-1001), ch.ChatID)
	assert.Equal(t, "https://t.me/+abc", ch.URL())
}

func TestCopyAndDelete(t *testing.T) {
	api := &fakeAPI{}
	g := New()
	g.Bind(api)
	ref, err := g.Copy(context.Background(), 5, domain.MessageRef{ChatID: 42, MessageID: 3})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageRef{ChatID: 5, MessageID: 500}, ref)
	sm := api.calls[0].what.(tele.StoredMessage)
	assert.Equal(t, "3", sm.MessageID)
	assert.Equal(t, int64(42), sm.ChatID)

	require.NoError(t, g.Delete(context.Background(), ref))
	require.Len(t, api.deleted, 1)
}
