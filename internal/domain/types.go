// Package domain holds the catalog bot's shared types, error taxonomy and
// the messaging port implemented by the Telegram gateway.
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Role is the effective authorization level of an identity.
type Role int

const (
	RoleNone Role = iota
	RoleJunior
	RoleHead
	RoleSuper
)

var roleNames = map[Role]string{
	RoleNone:   "none",
	RoleJunior: "junior_admin",
	RoleHead:   "head_admin",
	RoleSuper:  "super_admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// IsAdmin reports whether the role holds any admin privileges.
func (r Role) IsAdmin() bool { return r >= RoleJunior }

// ParseRole maps a stored role name back to a Role.
func ParseRole(s string) (Role, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == s {
			return role, true
		}
	}
	return RoleNone, false
}

// Value stores the role by name.
func (r Role) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan restores a role persisted by Value.
func (r *Role) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*r = RoleNone
		return nil
	default:
		return fmt.Errorf("role: unsupported scan type %T", src)
	}
	role, ok := ParseRole(raw)
	if !ok {
		return fmt.Errorf("role: unknown value %q", raw)
	}
	*r = role
	return nil
}

// User is anyone who has contacted the bot.
type User struct {
	ID             int64
	DisplayName    string
	Handle         string
	JoinedAt       time.Time
	LastActivityAt time.Time
}

// MediaKind is the Telegram media type of a payload.
type MediaKind string

const (
	MediaVideo     MediaKind = "video"
	MediaDocument  MediaKind = "document"
	MediaAnimation MediaKind = "animation"
	MediaAudio     MediaKind = "audio"
	MediaPhoto     MediaKind = "photo"
)

// Media is an opaque reference to an uploaded Telegram file.
type Media struct {
	Kind   MediaKind
	FileID string
}

// Valid reports whether the reference can be re-sent.
func (m Media) Valid() bool {
	return m.Kind != "" && strings.TrimSpace(m.FileID) != ""
}

// MessageRef addresses a message already posted to a chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// IsZero reports whether the reference points nowhere.
func (r MessageRef) IsZero() bool { return r.ChatID == 0 || r.MessageID == 0 }

// Item is a catalog entry addressed by its code.
type Item struct {
	Code         string
	Title        string
	Description  string
	Payload      Media
	PosterFileID string
	UploaderID   int64
	UploadedAt   time.Time
	Distribution MessageRef
	Views        int64
}

// AdminGrant records a stored admin role. The super admin is never stored.
type AdminGrant struct {
	UserID    int64
	Role      Role
	GrantedBy int64
	GrantedAt time.Time
}

// Channel is a chat users must join before using the bot.
type Channel struct {
	ChatID     int64
	Handle     string
	Title      string
	InviteLink string
	AddedAt    time.Time
}

// URL returns a link users can follow to join the channel.
func (c Channel) URL() string {
	if h := strings.TrimPrefix(strings.TrimSpace(c.Handle), "@"); h != "" {
		return "https://t.me/" + h
	}
	return c.InviteLink
}

// Name returns the best human label for the channel.
func (c Channel) Name() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Handle != "":
		return "@" + strings.TrimPrefix(c.Handle, "@")
	default:
		return fmt.Sprintf("%d", c.ChatID)
	}
}

// SettingPromoChannel holds the chat id announcements are posted to.
const SettingPromoChannel = "promo_channel"

// Stats aggregates catalog counters for the admin statistics view.
type Stats struct {
	Items    int
	Users    int
	Admins   int
	Channels int
	Views    int64
}
