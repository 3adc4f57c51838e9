package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and callbacks. Command names and aliases are
// matched case-insensitively.
type Registry struct {
	commands         map[string]commands.Command
	aliases          map[string]string
	callbacks        map[string]tele.HandlerFunc
	callbacksMu      sync.RWMutex
	callbackNotFound tele.HandlerFunc
	textFallback     tele.HandlerFunc
}

// NewRegistry creates an empty Registry. Unknown buttons are answered with
// a short notice until SetCallbackNotFound replaces it.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		aliases:   make(map[string]string),
		callbacks: make(map[string]tele.HandlerFunc),
		callbackNotFound: func(c tele.Context) error {
			_ = c.Respond(&tele.CallbackResponse{Text: "This button is no longer active"})
			return nil
		},
	}
}

// commandKey reduces "/Top@cinebot" and "top" to "/top".
func commandKey(name string) string {
	name, _, _ = strings.Cut(strings.TrimSpace(name), "@")
	name = strings.ToLower(name)
	if name != "" && !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// RegisterCommand adds cmd under name, which must start with a slash.
// A name or alias that is already taken is rejected.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	if r == nil || cmd.Handler == nil || cmd.Description == "" {
		return r.skip(name, "invalid")
	}
	if !strings.HasPrefix(strings.TrimSpace(name), "/") {
		return r.skip(name, "no_slash_prefix")
	}
	key := commandKey(name)
	if r.taken(key) {
		return r.skip(name, "duplicate")
	}
	aliases := make([]string, 0, len(cmd.Aliases))
	for _, a := range cmd.Aliases {
		ak := commandKey(a)
		if ak == "" || ak == key || r.taken(ak) {
			return r.skip(name, "alias_taken:"+a)
		}
		aliases = append(aliases, ak)
	}
	r.commands[key] = cmd
	for _, ak := range aliases {
		r.aliases[ak] = key
	}
	return nil
}

func (r *Registry) taken(key string) bool {
	if _, ok := r.commands[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

func (r *Registry) skip(name, reason string) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
		slog.String("name", name),
		slog.String("reason", reason),
	)
	return fmt.Errorf("register command %q: %s", name, reason)
}

// ListCommands returns the public command menu. With visibleOnly, hidden
// commands and those that need a capability are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	return r.menu(func(meta commands.Command) bool {
		return !visibleOnly || (!meta.Hidden && meta.Capability == "")
	})
}

// AdminCommands returns the menu shown to admins: every command that is
// not hidden, capability commands included.
func (r *Registry) AdminCommands() []tele.Command {
	return r.menu(func(meta commands.Command) bool { return !meta.Hidden })
}

func (r *Registry) menu(keep func(commands.Command) bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if keep(meta) {
			list = append(list, tele.Command{Text: cmd, Description: meta.Description})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves a command or alias to its canonical key. A
// "@botname" suffix, as sent in group chats, is ignored.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	key := commandKey(name)
	if target, ok := r.aliases[key]; ok {
		key = target
	}
	cmd, ok := r.commands[key]
	if !ok {
		return "", commands.Command{}, false
	}
	return key, cmd, true
}

// Commands returns all registered commands by canonical key.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// RegisterCallback adds a callback handler mapped to its key.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if r == nil || key == "" || handler == nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.callback.skip",
			slog.String("key", key),
			slog.Bool("handler_nil", handler == nil),
		)
		return errors.New("invalid callback registration")
	}
	r.callbacksMu.Lock()
	defer r.callbacksMu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return fmt.Errorf("callback already registered: %s", key)
	}
	r.callbacks[key] = handler
	return nil
}

func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the sorted callback keys.
func (r *Registry) ListCallbacks() []string {
	r.callbacksMu.RLock()
	defer r.callbacksMu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) SetCallbackNotFound(h tele.HandlerFunc) {
	if h != nil {
		r.callbackNotFound = h
	}
}

func (r *Registry) CallbackNotFound() tele.HandlerFunc {
	return r.callbackNotFound
}

// SetTextFallback sets the handler for text no route or dialog claimed.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// MenuSetter is the part of *tele.Bot that publishes command menus.
type MenuSetter interface {
	SetCommands(opts ...interface{}) error
}

// InitBotCommands publishes the public menu, then the admin menu in the
// private chat of each id in adminIDs. Failures are logged only.
func InitBotCommands(bot MenuSetter, reg *Registry, adminIDs ...int64) {
	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("scope", "default"),
			slog.String("err", err.Error()),
		)
	}
	admin := reg.AdminCommands()
	for _, id := range adminIDs {
		if id == 0 {
			continue
		}
		scope := tele.CommandScope{Type: tele.CommandScopeChat, ChatID: id}
		if err := bot.SetCommands(admin, scope); err != nil {
			logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.commands.set_failed",
				slog.String("scope", "chat"),
				slog.Int64("chat_id", id),
				slog.String("err", err.Error()),
			)
		}
	}
}
