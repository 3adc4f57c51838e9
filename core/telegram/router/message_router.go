package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the conversation engine seen from the router. Handle reports
// whether the update was consumed by a dialog; unconsumed updates continue
// to command lookup and the text fallback.
type FSM interface {
	Handle(c tele.Context) (bool, error)
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownCommand tele.HandlerFunc
	UnknownMedia   tele.HandlerFunc
}

// MediaEndpoints lists the non-text messages routed through the FSM. A
// forwarding dialog copies any of them, so every kind a user can send is
// listed, not only the kinds the catalog stores.
var MediaEndpoints = []string{
	tele.OnVideo, tele.OnDocument, tele.OnAnimation, tele.OnAudio, tele.OnPhoto,
	tele.OnVoice, tele.OnVideoNote, tele.OnSticker,
	tele.OnPoll, tele.OnDice, tele.OnLocation, tele.OnVenue, tele.OnContact,
}

// TextRoutes builds handlers for text and media routing.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		if consumed, err := runFSM(fsm, c); consumed {
			logHandlerSummary(c, "fsm", start, "", "", err)
			return err
		}

		text := strings.TrimSpace(c.Text())
		if reg != nil && strings.HasPrefix(text, "/") {
			cmdName, _, _ := strings.Cut(text, " ")
			if key, cmd, ok := reg.LookupCommand(cmdName); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if opts.UnknownCommand != nil {
				return handleWithSummary(c, "unknown_command", start, "skip", "", func() error {
					return opts.UnknownCommand(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if consumed, err := runFSM(fsm, c); consumed {
			logHandlerSummary(c, "fsm_media", start, "", "", err)
			return err
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, "skip", "", func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	routes := []tg.Route{{Endpoint: tele.OnText, Handler: wrap(textHandler)}}
	for _, ep := range MediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrap(mediaHandler)})
	}
	return routes
}

func runFSM(fsm FSM, c tele.Context) (bool, error) {
	if fsm == nil || c.Sender() == nil {
		return false, nil
	}
	return fsm.Handle(c)
}
