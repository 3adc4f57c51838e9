package render

import "github.com/m3rciful/cinebot/internal/domain"

// Callback uniques.
const (
	UniquePanel      = "panel"
	UniquePanelClose = "panel_close"
	UniqueCancel     = "cancel"
	UniqueConfirm    = "confirm"

	UniqueUpload = "upload"

	UniqueBroadcast        = "broadcast"
	UniqueBroadcastForward = "bc_forward"
	UniqueBroadcastCompose = "bc_compose"
	UniqueBroadcastSkip    = "bc_skip"

	UniqueAdmins      = "admins"
	UniqueGrantJunior = "grant_junior"
	UniqueGrantHead   = "grant_head"
	UniqueRevoke      = "revoke"

	UniqueChannels      = "channels"
	UniqueChannelAdd    = "ch_add"
	UniqueChannelRemove = "ch_remove"

	UniquePromo      = "promo"
	UniquePromoClear = "promo_clear"

	UniqueDelete     = "delete"
	UniqueDeletePick = "del_pick"

	UniqueStats = "stats"
	UniqueTop   = "top"
	UniqueList  = "list"
)

func btn(text, unique string) domain.Button {
	return domain.Button{Text: text, Unique: unique}
}

func btnData(text, unique, payload string) domain.Button {
	return domain.Button{Text: text, Unique: unique, Payload: payload}
}

// CancelKeyboard offers only the cancel button.
func CancelKeyboard() domain.Keyboard {
	return domain.Keyboard{domain.Row(btn("✖️ Cancel", UniqueCancel))}
}

// ConfirmKeyboard offers confirm and cancel. The confirm button carries
// the name of the flow whose preview it belongs to.
func ConfirmKeyboard(confirm, flow string) domain.Keyboard {
	return domain.Keyboard{domain.Row(btnData(confirm, UniqueConfirm, flow), btn("✖️ Cancel", UniqueCancel))}
}

// SkipKeyboard lets the admin skip the media step of a broadcast.
func SkipKeyboard() domain.Keyboard {
	return domain.Keyboard{domain.Row(btn("⏭ Skip", UniqueBroadcastSkip), btn("✖️ Cancel", UniqueCancel))}
}
