package render

// Dialog prompts and short replies.
const (
	PromptUploadMedia       = "📤 Send the video or file to upload."
	PromptUploadDescription = "📝 Send the description. The first line becomes the title.\nYou can also send a photo to use as the poster."
	PromptUploadCode        = "🔑 Send a unique code: 3 to 32 latin letters or digits."
	PromptBroadcastForward  = "↪️ Send or forward the message to broadcast. It will be copied to every user as is."
	PromptBroadcastMedia    = "🖼 Send a photo, video or file for the broadcast, or skip."
	PromptBroadcastText     = "✍️ Send the broadcast text."
	PromptBroadcastConfirm  = "☝️ This is how the broadcast will look. Send it to every user?"
	PromptAdminID           = "🆔 Send the numeric user id. The user can get it with /myid."
	PromptRevokeID          = "🆔 Send the numeric id of the admin to revoke."
	PromptChannel           = "📢 Forward a post from the channel, or send its @handle or numeric id. The bot must be an admin there."

	ReplyPosterSaved    = "🖼 Poster saved."
	ReplyCancelled      = "✖️ Cancelled."
	ReplyNothingPending = "Nothing to cancel."
	ReplyDenied         = "⛔ You don't have access to this action."
	ReplyUseButtons     = "👇 Use the buttons above to confirm or cancel."
	ReplyStaleConfirm   = "⚠️ That button belongs to an earlier preview. Use the buttons of the latest one."
	ReplyStorageFailure = "⚠️ Something went wrong. Please try again later."
	ReplyCodeTaken      = "⚠️ This code is already taken. Send another one."
	ReplyNeedMedia      = "⚠️ Please send a media file."
	ReplyNeedText       = "⚠️ The text can't be empty."
	ReplyBadID          = "⚠️ That is not a numeric user id."
	ReplyNotAdmin       = "⚠️ This user is not an admin. Send another id."
	ReplyNoSuchCode     = "⚠️ No item with this code. Send another one."
	ReplyBadChannel     = "⚠️ Couldn't find that channel. Make sure the bot is an admin there."
	ReplyChannelExists  = "ℹ️ This channel is already required."
	ReplyChannelAdded   = "✅ Channel added."
	ReplyChannelRemoved = "✅ Channel removed."
	ReplyPromoSet       = "✅ Promo channel saved."
	ReplyPromoCleared   = "✅ Promo channel cleared."
	ReplyBroadcastStart = "⏳ Broadcasting..."
	ReplyDistribution   = "⚠️ Saved, but posting to the distribution channel failed."
	ReplySlowDown       = "⏳ Too many requests. Please slow down."
	ReplyUnknownCommand = "🤷 Unknown command. See /help."
	ReplyUnknownMedia   = "🤷 I only understand item codes. See /help."
	ReplyEmptyCatalog   = "📭 The catalog is empty."
)
