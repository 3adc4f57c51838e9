package app

import (
	"strings"

	"github.com/m3rciful/cinebot/core/telegram/callbacks"
	"github.com/m3rciful/cinebot/internal/dialog"
	"github.com/m3rciful/cinebot/internal/domain"

	tele "gopkg.in/telebot.v4"
)

// inputOf flattens an update into what the services need.
func inputOf(c tele.Context) dialog.Input {
	var in dialog.Input
	if u := c.Sender(); u != nil {
		in.UserID = u.ID
		in.Name = displayName(u)
	}
	if ch := c.Chat(); ch != nil {
		in.ChatID = ch.ID
	}
	if cb := c.Callback(); cb != nil {
		in.Unique, in.Payload = callbacks.ParseCallbackData(cb)
		if cb.Message != nil {
			in.Message = messageRef(cb.Message)
			if in.ChatID == 0 && cb.Message.Chat != nil {
				in.ChatID = cb.Message.Chat.ID
			}
		}
		return in
	}
	fillFromMessage(&in, c.Message())
	return in
}

func fillFromMessage(in *dialog.Input, m *tele.Message) {
	if m == nil {
		return
	}
	in.Message = messageRef(m)
	if in.ChatID == 0 && m.Chat != nil {
		in.ChatID = m.Chat.ID
	}
	in.Text = m.Text
	if in.Text == "" {
		in.Text = m.Caption
	}
	in.Media = mediaOf(m)
	in.ForwardedChat = forwardedChat(m)
}

func messageRef(m *tele.Message) domain.MessageRef {
	if m == nil || m.Chat == nil {
		return domain.MessageRef{}
	}
	return domain.MessageRef{ChatID: m.Chat.ID, MessageID: m.ID}
}

// mediaOf picks the attached file. Photos resolve to their largest size.
func mediaOf(m *tele.Message) *domain.Media {
	switch {
	case m.Video != nil:
		return &domain.Media{Kind: domain.MediaVideo, FileID: m.Video.FileID}
	case m.Animation != nil:
		return &domain.Media{Kind: domain.MediaAnimation, FileID: m.Animation.FileID}
	case m.Document != nil:
		return &domain.Media{Kind: domain.MediaDocument, FileID: m.Document.FileID}
	case m.Audio != nil:
		return &domain.Media{Kind: domain.MediaAudio, FileID: m.Audio.FileID}
	case m.Photo != nil:
		return &domain.Media{Kind: domain.MediaPhoto, FileID: m.Photo.FileID}
	}
	return nil
}

// forwardedChat reports the channel a post was forwarded from.
func forwardedChat(m *tele.Message) *domain.Channel {
	if m.Origin == nil || m.Origin.Chat == nil {
		return nil
	}
	chat := m.Origin.Chat
	return &domain.Channel{ChatID: chat.ID, Handle: chat.Username, Title: chat.Title}
}

func displayName(u *tele.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	return name
}

// commandOf returns the leading "/command" of a text message.
func commandOf(c tele.Context) string {
	if c.Callback() != nil || c.Message() == nil {
		return ""
	}
	text := strings.TrimSpace(c.Message().Text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(text, " ")
	return cmd
}
