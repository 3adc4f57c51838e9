// Package gatewaytest provides an in-memory messaging gateway.
package gatewaytest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/cinebot/internal/domain"
)

// ErrBlocked mimics Telegram refusing delivery to a user.
var ErrBlocked = errors.New("telegram: Forbidden: bot was blocked by the user (403)")

// Sent is one recorded outbound message.
type Sent struct {
	ChatID int64
	Msg    domain.Outgoing
	Copy   *domain.MessageRef
	Ref    domain.MessageRef
}

// Fake records every call. Fail and Members are read under the lock and
// may be set before use.
type Fake struct {
	mu      sync.Mutex
	nextID  int
	sent    []Sent
	edits   []domain.MessageRef
	deleted []domain.MessageRef

	// Fail makes sends to the listed chats fail.
	Fail map[int64]error
	// FailDelete makes Delete fail.
	FailDelete error
	// Members maps channel id to user id to status. Missing entries error.
	Members map[int64]map[int64]domain.MemberStatus
	// Channels maps a reference ("@name" or id) to a resolved channel.
	Channels map[string]domain.Channel
}

func New() *Fake {
	return &Fake{
		Fail:     map[int64]error{},
		Members:  map[int64]map[int64]domain.MemberStatus{},
		Channels: map[string]domain.Channel{},
	}
}

func (f *Fake) record(chatID int64, msg domain.Outgoing, from *domain.MessageRef) (domain.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Fail[chatID]; err != nil {
		return domain.MessageRef{}, err
	}
	f.nextID++
	ref := domain.MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.sent = append(f.sent, Sent{ChatID: chatID, Msg: msg, Copy: from, Ref: ref})
	return ref, nil
}

func (f *Fake) Send(_ context.Context, chatID int64, msg domain.Outgoing) (domain.MessageRef, error) {
	return f.record(chatID, msg, nil)
}

func (f *Fake) Copy(_ context.Context, chatID int64, from domain.MessageRef) (domain.MessageRef, error) {
	return f.record(chatID, domain.Outgoing{}, &from)
}

func (f *Fake) Edit(_ context.Context, ref domain.MessageRef, _ domain.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, ref)
	return nil
}

func (f *Fake) Delete(_ context.Context, ref domain.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete != nil {
		return f.FailDelete
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *Fake) Membership(_ context.Context, channelID, userID int64) (domain.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users, ok := f.Members[channelID]
	if !ok {
		return "", fmt.Errorf("telegram: Bad Request: chat not found (400)")
	}
	if st, ok := users[userID]; ok {
		return st, nil
	}
	return domain.MemberLeft, nil
}

func (f *Fake) ResolveChannel(_ context.Context, ref string) (domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.Channels[strings.TrimSpace(ref)]; ok {
		return ch, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, ch := range f.Channels {
			if ch.ChatID == id {
				return ch, nil
			}
		}
	}
	return domain.Channel{}, fmt.Errorf("telegram: Bad Request: chat not found (400)")
}

// Sent returns a copy of every successful send and copy.
func (f *Fake) Sent() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.sent...)
}

// SentTo filters Sent by chat.
func (f *Fake) SentTo(chatID int64) []Sent {
	var out []Sent
	for _, s := range f.Sent() {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the latest message sent to chatID.
func (f *Fake) Last(chatID int64) (Sent, bool) {
	msgs := f.SentTo(chatID)
	if len(msgs) == 0 {
		return Sent{}, false
	}
	return msgs[len(msgs)-1], true
}

func (f *Fake) Deleted() []domain.MessageRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.MessageRef(nil), f.deleted...)
}

// Reset drops recorded traffic.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.edits = nil
	f.deleted = nil
}

var _ domain.Gateway = (*Fake)(nil)
