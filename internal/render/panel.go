package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/monitor"
)

// Welcome greets a user on /start. Admins get a shortcut to the panel.
func Welcome(name string, admin bool) domain.Outgoing {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hello, %s!\n\nSend me a code to get the item. /top shows the most popular ones.",
		format.Bold(name))
	out := domain.Outgoing{Text: text}
	if admin {
		out.Keyboard = domain.Keyboard{domain.Row(btn("🛠 Admin panel", UniquePanel))}
	}
	return out
}

// Gated asks the user to join the missing channels first.
func Gated(kb domain.Keyboard) domain.Outgoing {
	return domain.Outgoing{
		Text:     "📢 Please join the channels below to use the bot, then press the check button.",
		Keyboard: kb,
	}
}

// MyID shows the caller's numeric id.
func MyID(id int64) string {
	return "🆔 Your id: " + format.Code(strconv.FormatInt(id, 10))
}

// Help lists what users and admins can do.
func Help(admin bool) string {
	var b strings.Builder
	b.WriteString("ℹ️ <b>How to use</b>\n\n")
	b.WriteString("Send an item code, e.g. <code>ABC1</code>, to receive it.\n\n")
	b.WriteString("/top - popular items\n/list - newest items\n/myid - your id\n/cancel - stop the current action\n")
	if admin {
		b.WriteString("/panel - admin panel\n")
	}
	return b.String()
}

// Panel lists the actions caps allows.
func Panel(role domain.Role, caps access.Set) domain.Outgoing {
	var kb domain.Keyboard
	pair := func(a, b domain.Button, okA, okB bool) {
		var row []domain.Button
		if okA {
			row = append(row, a)
		}
		if okB {
			row = append(row, b)
		}
		if len(row) > 0 {
			kb = append(kb, row)
		}
	}
	pair(btn("📤 Upload", UniqueUpload), btn("🗑 Delete", UniqueDelete), caps.Has(access.CapUpload), caps.Has(access.CapDelete))
	pair(btn("📣 Broadcast", UniqueBroadcast), btn("📊 Statistics", UniqueStats), caps.Has(access.CapBroadcast), caps.Has(access.CapStats))
	pair(btn("👮 Admins", UniqueAdmins), btn("📢 Channels", UniqueChannels), caps.Has(access.CapAdmins), caps.Has(access.CapChannels))
	pair(btn("📌 Promo channel", UniquePromo), domain.Button{}, caps.Has(access.CapSettings), false)
	kb = append(kb, domain.Row(btn("✖️ Close", UniquePanelClose)))
	return domain.Outgoing{
		Text:     fmt.Sprintf("🛠 <b>Admin panel</b>\nRole: %s", format.Code(role.String())),
		Keyboard: kb,
	}
}

// BroadcastMenu lets the admin choose the broadcast mode.
func BroadcastMenu() domain.Outgoing {
	return domain.Outgoing{
		Text: "📣 <b>Broadcast</b>\n\nForward: the next message you send is copied to every user as is.\nCompose: build a message with optional media and a preview.",
		Keyboard: domain.Keyboard{
			domain.Row(btn("↪️ Forward", UniqueBroadcastForward), btn("✍️ Compose", UniqueBroadcastCompose)),
			domain.Row(btn("✖️ Cancel", UniqueCancel)),
		},
	}
}

// BroadcastReport summarizes a finished fan-out.
func BroadcastReport(res broadcast.Result) string {
	return fmt.Sprintf("📣 Broadcast finished\n\n👥 Total: %d\n✅ Delivered: %d\n❌ Failed: %d\n⏱ Took: %s",
		res.Total, res.Success, res.Errors, res.Duration.Round(time.Second))
}

// Stats renders the statistics view.
func Stats(s domain.Stats, m monitor.Snapshot) string {
	var b strings.Builder
	b.WriteString("📊 <b>Bot statistics</b>\n\n")
	fmt.Fprintf(&b, "🎬 Items: %d\n👥 Users: %d\n🔐 Admins: %d\n📢 Required channels: %d\n👁 Total views: %d\n\n",
		s.Items, s.Users, s.Admins, s.Channels, s.Views)
	b.WriteString("⚡ <b>Last hour</b>\n")
	fmt.Fprintf(&b, "Requests: %d\nSuccess rate: %.1f%%\nActive users: %d\n\n",
		m.HourlyRequests, m.HourlySuccessRate, m.HourlyActiveUsers)
	fmt.Fprintf(&b, "📈 Requests in 24h: %d\n", m.Requests24h)
	fmt.Fprintf(&b, "⏱ Uptime: %s\n", Uptime(m.Uptime))
	status := "🟢 healthy"
	if m.Status == monitor.StatusAttention {
		status = "🟠 attention"
	}
	fmt.Fprintf(&b, "Health: %s", status)
	return b.String()
}

// Uptime renders d as days, hours and minutes.
func Uptime(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int((d - time.Duration(h)*time.Hour) / time.Minute)
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, h, m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// ItemPage renders a paginated listing. unique selects the listing the
// prev/next buttons reopen.
func ItemPage(title string, p catalog.Page, unique string) domain.Outgoing {
	if p.Total == 0 {
		return domain.Outgoing{Text: ReplyEmptyCatalog}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (page %d/%d)\n\n", format.Bold(title), p.Number, p.Pages)
	for i, it := range p.Items {
		fmt.Fprintf(&b, "%d. %s\n   🔑 %s · 👁 %d\n", p.Offset()+i+1, format.Bold(titleOf(it)), format.Code(it.Code), it.Views)
	}
	var nav []domain.Button
	if p.HasPrev() {
		nav = append(nav, btnData("⬅️ Prev", unique, strconv.Itoa(p.Number-1)))
	}
	if p.HasNext() {
		nav = append(nav, btnData("Next ➡️", unique, strconv.Itoa(p.Number+1)))
	}
	out := domain.Outgoing{Text: strings.TrimRight(b.String(), "\n")}
	if len(nav) > 0 {
		out.Keyboard = domain.Keyboard{nav}
	}
	return out
}

// Admins lists the super admin and stored grants with management buttons.
func Admins(superID int64, grants []domain.AdminGrant, canGrantHead bool) domain.Outgoing {
	var b strings.Builder
	b.WriteString("👮 <b>Admins</b>\n\n")
	fmt.Fprintf(&b, "⭐ %s · super_admin\n", format.Code(strconv.FormatInt(superID, 10)))
	for _, g := range grants {
		fmt.Fprintf(&b, "• %s · %s\n", format.Code(strconv.FormatInt(g.UserID, 10)), format.Escape(g.Role.String()))
	}
	row := []domain.Button{btn("➕ Junior", UniqueGrantJunior)}
	if canGrantHead {
		row = append(row, btn("➕ Head", UniqueGrantHead))
	}
	row = append(row, btn("➖ Revoke", UniqueRevoke))
	return domain.Outgoing{
		Text:     strings.TrimRight(b.String(), "\n"),
		Keyboard: domain.Keyboard{row, domain.Row(btn("⬅️ Panel", UniquePanel))},
	}
}

// Channels lists required channels with remove buttons.
func Channels(chs []domain.Channel) domain.Outgoing {
	var b strings.Builder
	b.WriteString("📢 <b>Required channels</b>\n\n")
	if len(chs) == 0 {
		b.WriteString("None. Everyone can use the bot.")
	}
	kb := make(domain.Keyboard, 0, len(chs)+1)
	for _, ch := range chs {
		fmt.Fprintf(&b, "• %s · %s\n", format.Link(ch.Name(), ch.URL()), format.Code(strconv.FormatInt(ch.ChatID, 10)))
		kb = append(kb, domain.Row(btnData("❌ "+format.Truncate(ch.Name(), 32), UniqueChannelRemove, strconv.FormatInt(ch.ChatID, 10))))
	}
	kb = append(kb, domain.Row(btn("➕ Add channel", UniqueChannelAdd), btn("⬅️ Panel", UniquePanel)))
	return domain.Outgoing{Text: strings.TrimRight(b.String(), "\n"), Keyboard: kb}
}

// Promo shows the current promotion channel.
func Promo(current string) domain.Outgoing {
	text := "📌 <b>Promo channel</b>\n\nNot set."
	if current != "" {
		text = "📌 <b>Promo channel</b>\n\nCurrent: " + format.Code(current)
	}
	text += "\n\nForward a post from the new channel, or send its @handle or numeric id."
	kb := domain.Keyboard{}
	if current != "" {
		kb = append(kb, domain.Row(btn("🧹 Clear", UniquePromoClear)))
	}
	kb = append(kb, CancelKeyboard()...)
	return domain.Outgoing{Text: text, Keyboard: kb}
}
