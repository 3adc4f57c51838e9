package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Capability, when set, is required to run the command and keeps it
	// out of the public command menu.
	Capability string
	Hidden     bool
	Aliases    []string
}
