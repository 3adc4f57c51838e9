package domain

import "context"

// Button is a transport-neutral inline button. Either Unique (callback) or
// URL is set.
type Button struct {
	Text    string
	Unique  string
	Payload string
	URL     string
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Row builds a keyboard row.
func Row(buttons ...Button) []Button { return buttons }

// Outgoing is a message the bot sends. Text is HTML. When Media is set, Text
// becomes its caption.
type Outgoing struct {
	Text     string
	Media    *Media
	Poster   string
	Keyboard Keyboard
}

// MemberStatus is a chat membership status as reported by Telegram.
type MemberStatus string

const (
	MemberCreator       MemberStatus = "creator"
	MemberAdministrator MemberStatus = "administrator"
	MemberMember        MemberStatus = "member"
	MemberRestricted    MemberStatus = "restricted"
	MemberLeft          MemberStatus = "left"
	MemberKicked        MemberStatus = "kicked"
)

// Subscribed reports whether the status satisfies a channel requirement.
func (s MemberStatus) Subscribed() bool {
	switch s {
	case MemberCreator, MemberAdministrator, MemberMember:
		return true
	}
	return false
}

// Gateway is the messaging port used by the domain services.
type Gateway interface {
	Send(ctx context.Context, chatID int64, msg Outgoing) (MessageRef, error)
	Copy(ctx context.Context, chatID int64, from MessageRef) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Outgoing) error
	Delete(ctx context.Context, ref MessageRef) error
	Membership(ctx context.Context, channelID, userID int64) (MemberStatus, error)
	// ResolveChannel accepts "@handle" or a numeric chat id.
	ResolveChannel(ctx context.Context, ref string) (Channel, error)
}
