// Package gate enforces the required channel subscriptions.
package gate

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
	"github.com/m3rciful/cinebot/internal/domain"
)

// CheckUnique is the callback that re-runs the check.
const CheckUnique = "check_sub"

// AllowedCommands bypass the gate.
var AllowedCommands = []string{"/start", "/myid", "/panel"}

// ChannelStore lists required channels.
type ChannelStore interface {
	ListChannels(ctx context.Context) ([]domain.Channel, error)
}

// Membership answers whether a user is in a chat.
type Membership interface {
	Membership(ctx context.Context, channelID, userID int64) (domain.MemberStatus, error)
}

// Gate has no cache. Every call re-queries storage and Telegram.
type Gate struct {
	channels ChannelStore
	members  Membership
}

func New(channels ChannelStore, members Membership) *Gate {
	return &Gate{channels: channels, members: members}
}

// UnsatisfiedChannels lists required channels userID has not joined.
// A failed membership query counts the channel as not joined.
func (g *Gate) UnsatisfiedChannels(ctx context.Context, userID int64) ([]domain.Channel, error) {
	required, err := g.channels.ListChannels(ctx)
	if err != nil {
		return nil, domain.Storage("gate.channels", err)
	}
	var missing []domain.Channel
	for _, ch := range required {
		status, err := g.members.Membership(ctx, ch.ChatID, userID)
		if err != nil {
			logger.Warn(ctx, "service.gate", "gate.membership",
				slog.String("status", "fail"),
				slog.Int64("channel_id", ch.ChatID),
				slog.String("error_kind", netutil.Classify(err)),
				slog.String("err", netutil.RedactErr(err)),
			)
			missing = append(missing, ch)
			continue
		}
		if !status.Subscribed() {
			missing = append(missing, ch)
		}
	}
	return missing, nil
}

// IsGated reports whether userID must join channels first. A storage
// failure gates the user.
func (g *Gate) IsGated(ctx context.Context, userID int64) bool {
	missing, err := g.UnsatisfiedChannels(ctx, userID)
	if err != nil {
		logger.Error(ctx, "service.gate", "gate.check",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return true
	}
	return len(missing) > 0
}

// Buttons lists a join button per missing channel plus the re-check button.
func (g *Gate) Buttons(ctx context.Context, userID int64) (domain.Keyboard, error) {
	missing, err := g.UnsatisfiedChannels(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ButtonsFor(missing), nil
}

// ButtonsFor renders the gate keyboard for missing channels.
func ButtonsFor(missing []domain.Channel) domain.Keyboard {
	if len(missing) == 0 {
		return nil
	}
	kb := make(domain.Keyboard, 0, len(missing)+1)
	for _, ch := range missing {
		url := ch.URL()
		if url == "" {
			continue
		}
		kb = append(kb, domain.Row(domain.Button{Text: "Join " + ch.Name(), URL: url}))
	}
	kb = append(kb, domain.Row(domain.Button{Text: "✅ I've subscribed", Unique: CheckUnique}))
	return kb
}

// Allowed reports whether a command or callback bypasses the gate.
func Allowed(command, callback string) bool {
	if callback == CheckUnique {
		return true
	}
	if command == "" {
		return false
	}
	name, _, _ := strings.Cut(strings.ToLower(command), "@")
	return slices.Contains(AllowedCommands, name)
}
