// Package gateway implements domain.Gateway over telebot.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/keyboard"
	"github.com/m3rciful/cinebot/core/telegram/middleware"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned before the bot is attached.
var ErrNotBound = errors.New("gateway: bot not bound")

// API is the subset of *tele.Bot the gateway calls.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
	ChatByUsername(name string) (*tele.Chat, error)
	InviteLink(chat *tele.Chat) (string, error)
}

// Gateway is safe for concurrent use. Bind must be called before use.
type Gateway struct {
	mu  sync.RWMutex
	api API
}

func New() *Gateway { return &Gateway{} }

// Bind attaches the running bot.
func (g *Gateway) Bind(api API) {
	g.mu.Lock()
	g.api = api
	g.mu.Unlock()
}

func (g *Gateway) bot() (API, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.api == nil {
		return nil, ErrNotBound
	}
	return g.api, nil
}

func sendOptions(kb domain.Keyboard) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: Markup(kb)}
}

// Markup converts a domain keyboard. An empty keyboard yields nil.
func Markup(kb domain.Keyboard) *tele.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(kb))
	for _, row := range kb {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.InlineBtn{Text: b.Text, Unique: b.Unique, Data: b.Payload, URL: b.URL})
		}
		rows = append(rows, r)
	}
	return keyboard.InlineButtonsRows(rows...)
}

// Sendable builds the telebot value for msg. Media carries Text as its caption.
func Sendable(msg domain.Outgoing) interface{} {
	if msg.Media == nil {
		return msg.Text
	}
	file := tele.File{FileID: msg.Media.FileID}
	switch msg.Media.Kind {
	case domain.MediaVideo:
		return &tele.Video{File: file, Caption: msg.Text}
	case domain.MediaAnimation:
		return &tele.Animation{File: file, Caption: msg.Text}
	case domain.MediaAudio:
		return &tele.Audio{File: file, Caption: msg.Text}
	case domain.MediaPhoto:
		return &tele.Photo{File: file, Caption: msg.Text}
	default:
		return &tele.Document{File: file, Caption: msg.Text}
	}
}

func refOf(m *tele.Message, chatID int64) domain.MessageRef {
	if m == nil {
		return domain.MessageRef{}
	}
	if m.Chat != nil {
		chatID = m.Chat.ID
	}
	return domain.MessageRef{ChatID: chatID, MessageID: m.ID}
}

func stored(ref domain.MessageRef) tele.StoredMessage {
	return tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
}

// Send delivers msg. A poster goes out first as a plain photo; its failure
// is logged and does not stop the main message.
func (g *Gateway) Send(ctx context.Context, chatID int64, msg domain.Outgoing) (domain.MessageRef, error) {
	api, err := g.bot()
	if err != nil {
		return domain.MessageRef{}, err
	}
	to := tele.ChatID(chatID)
	if msg.Media != nil && msg.Poster != "" {
		if _, err := api.Send(to, &tele.Photo{File: tele.File{FileID: msg.Poster}}); err != nil {
			logger.Debug(ctx, "tg", "gateway.poster",
				slog.String("status", "fail"),
				slog.String("error_kind", netutil.Classify(err)),
			)
		} else {
			middleware.RecordSent(ctx, false)
		}
	}
	m, err := api.Send(to, Sendable(msg), sendOptions(msg.Keyboard))
	if err != nil {
		return domain.MessageRef{}, err
	}
	middleware.RecordSent(ctx, len(msg.Keyboard) > 0)
	return refOf(m, chatID), nil
}

// Copy re-sends a message verbatim without the forward header.
func (g *Gateway) Copy(ctx context.Context, chatID int64, from domain.MessageRef) (domain.MessageRef, error) {
	api, err := g.bot()
	if err != nil {
		return domain.MessageRef{}, err
	}
	m, err := api.Copy(tele.ChatID(chatID), stored(from))
	if err != nil {
		return domain.MessageRef{}, err
	}
	middleware.RecordSent(ctx, false)
	return refOf(m, chatID), nil
}

// Edit replaces the text and keyboard of a sent message.
func (g *Gateway) Edit(_ context.Context, ref domain.MessageRef, msg domain.Outgoing) error {
	api, err := g.bot()
	if err != nil {
		return err
	}
	_, err = api.Edit(stored(ref), msg.Text, sendOptions(msg.Keyboard))
	return err
}

func (g *Gateway) Delete(_ context.Context, ref domain.MessageRef) error {
	api, err := g.bot()
	if err != nil {
		return err
	}
	return api.Delete(stored(ref))
}

// Membership reports userID's status in channelID. Restricted users who
// are still in the chat count as members.
func (g *Gateway) Membership(_ context.Context, channelID, userID int64) (domain.MemberStatus, error) {
	api, err := g.bot()
	if err != nil {
		return "", err
	}
	m, err := api.ChatMemberOf(tele.ChatID(channelID), tele.ChatID(userID))
	if err != nil {
		return "", err
	}
	return memberStatus(m), nil
}

func memberStatus(m *tele.ChatMember) domain.MemberStatus {
	if m == nil {
		return domain.MemberLeft
	}
	status := domain.MemberStatus(m.Role)
	if status == domain.MemberRestricted && m.Member {
		return domain.MemberMember
	}
	return status
}

// ResolveChannel looks up "@handle" or a numeric chat id.
func (g *Gateway) ResolveChannel(ctx context.Context, ref string) (domain.Channel, error) {
	api, err := g.bot()
	if err != nil {
		return domain.Channel{}, err
	}
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "https://t.me/")
	if _, err := strconv.ParseInt(ref, 10, 64); err != nil && !strings.HasPrefix(ref, "@") {
		ref = "@" + ref
	}
	chat, err := api.ChatByUsername(ref)
	if err != nil {
		return domain.Channel{}, err
	}
	ch := domain.Channel{
		ChatID:     chat.ID,
		Handle:     chat.Username,
		Title:      chat.Title,
		InviteLink: chat.InviteLink,
	}
	if ch.Handle == "" && ch.InviteLink == "" {
		link, err := api.InviteLink(chat)
		if err != nil {
			logger.Debug(ctx, "tg", "gateway.invite_link",
				slog.String("status", "fail"),
				slog.Int64("channel_id", chat.ID),
				slog.String("error_kind", netutil.Classify(err)),
			)
		}
		ch.InviteLink = link
	}
	return ch, nil
}

var _ domain.Gateway = (*Gateway)(nil)
