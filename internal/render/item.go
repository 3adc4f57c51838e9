// Package render turns domain values into Telegram HTML messages. Nothing
// here performs I/O.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/internal/domain"
)

const (
	// TimeLayout formats timestamps shown to users. Times are UTC.
	TimeLayout = "2006-01-02 15:04"
	// captionBudget keeps captions under Telegram's 1024 character limit.
	captionBudget = 700
)

// Time formats t in UTC, or a dash when zero.
func Time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(TimeLayout) + " UTC"
}

func titleOf(it domain.Item) string {
	if it.Title != "" {
		return it.Title
	}
	return it.Code
}

// DistributionCaption is posted with the item in the distribution channel.
func DistributionCaption(it domain.Item, uploader string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s\n", format.Bold(titleOf(it)))
	fmt.Fprintf(&b, "🔑 Code: %s\n", format.Code(it.Code))
	fmt.Fprintf(&b, "📤 Uploaded by: %s\n", format.Escape(uploader))
	fmt.Fprintf(&b, "⏰ Time: %s", Time(it.UploadedAt))
	return b.String()
}

// LookupCaption accompanies the media a user retrieves by code.
func LookupCaption(it domain.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎬 %s\n", format.Bold(titleOf(it)))
	if rest := descriptionBody(it); rest != "" {
		b.WriteString(format.Escape(format.Truncate(rest, captionBudget)))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "🔑 Code: %s\n", format.Code(it.Code))
	fmt.Fprintf(&b, "👁 Views: %d\n", it.Views)
	fmt.Fprintf(&b, "⏰ Date: %s", Time(it.UploadedAt))
	return b.String()
}

// descriptionBody is the description without its first line, which
// already serves as the title.
func descriptionBody(it domain.Item) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(it.Description), "\n")
	return strings.TrimSpace(rest)
}

// ItemMessage is the lookup reply: the media with its caption.
func ItemMessage(it domain.Item) domain.Outgoing {
	media := it.Payload
	return domain.Outgoing{Text: LookupCaption(it), Media: &media, Poster: it.PosterFileID}
}

// DistributionMessage is the channel post for a new item.
func DistributionMessage(it domain.Item, uploader string) domain.Outgoing {
	media := it.Payload
	return domain.Outgoing{Text: DistributionCaption(it, uploader), Media: &media, Poster: it.PosterFileID}
}

// Announcement is the promo channel post for a new item.
func Announcement(it domain.Item, botUsername string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 %s\n", format.Bold(titleOf(it)))
	fmt.Fprintf(&b, "🔑 Code: %s", format.Code(it.Code))
	if botUsername != "" {
		name := strings.TrimPrefix(botUsername, "@")
		fmt.Fprintf(&b, "\n\n%s", format.Link("Watch in @"+name, "https://t.me/"+name))
	}
	return b.String()
}

// UploadPreview shows the draft before it is saved.
func UploadPreview(it domain.Item, flow string) domain.Outgoing {
	media := it.Payload
	var b strings.Builder
	b.WriteString("👀 <b>Preview</b>\n\n")
	fmt.Fprintf(&b, "🎬 %s\n", format.Bold(titleOf(it)))
	if rest := descriptionBody(it); rest != "" {
		b.WriteString(format.Escape(format.Truncate(rest, captionBudget)))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "🔑 Code: %s\n", format.Code(it.Code))
	if it.PosterFileID != "" {
		b.WriteString("🖼 Poster attached\n")
	}
	b.WriteString("\nSave this item?")
	return domain.Outgoing{
		Text:     b.String(),
		Media:    &media,
		Poster:   it.PosterFileID,
		Keyboard: ConfirmKeyboard("✅ Save", flow),
	}
}

// Saved confirms a committed upload.
func Saved(it domain.Item) string {
	return fmt.Sprintf("✨ Item saved!\n\n🎬 %s\n🔑 Code: %s", format.Bold(titleOf(it)), format.Code(it.Code))
}

// NotFound is the lookup miss hint.
func NotFound(code string) string {
	return fmt.Sprintf("❌ Code %s was not found.\n\n💡 Check the code and try again, or see /top for popular items.",
		format.Code(code))
}

// DeletePreview asks to confirm a deletion.
func DeletePreview(code, title, flow string) domain.Outgoing {
	return domain.Outgoing{
		Text: fmt.Sprintf("🗑 Delete %s (%s)?\n\nThe channel post will be removed too.",
			format.Bold(title), format.Code(code)),
		Keyboard: ConfirmKeyboard("🗑 Delete", flow),
	}
}

// Deleted confirms a deletion.
func Deleted(it domain.Item) string {
	return fmt.Sprintf("✅ Deleted %s (%s).", format.Bold(titleOf(it)), format.Code(it.Code))
}

// DeleteChooser lists recent items with one delete button each.
func DeleteChooser(items []domain.Item) domain.Outgoing {
	text := "🗑 Send the code of the item to delete"
	kb := make(domain.Keyboard, 0, len(items)+1)
	if len(items) > 0 {
		text += " or pick a recent one below"
	}
	for _, it := range items {
		label := format.Truncate(fmt.Sprintf("%s · %s", it.Code, titleOf(it)), 48)
		kb = append(kb, domain.Row(btnData("🗑 "+label, UniqueDeletePick, it.Code)))
	}
	kb = append(kb, CancelKeyboard()...)
	return domain.Outgoing{Text: text + ":", Keyboard: kb}
}
