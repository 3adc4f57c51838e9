package app

import (
	coretelegram "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/core/telegram/middleware"
	"github.com/m3rciful/cinebot/core/telegram/router"
	"github.com/m3rciful/cinebot/core/telegram/ui"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/gate"
	"github.com/m3rciful/cinebot/internal/render"

	tele "gopkg.in/telebot.v4"
)

// wrap adapts a handler to telebot.
func (a *App) wrap(h handler) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h(tghelpers.BuildContext(c), inputOf(c))
	}
}

func (a *App) register(reg *coretelegram.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: a.wrap(a.start), Description: "Start the bot"}},
		{"/myid", commands.Command{Handler: a.wrap(a.myID), Description: "Show your id"}},
		{"/top", commands.Command{Handler: a.wrap(a.top), Description: "Popular items"}},
		{"/list", commands.Command{Handler: a.wrap(a.list), Description: "Newest items"}},
		{"/help", commands.Command{Handler: a.wrap(a.help), Description: "How to use the bot"}},
		{"/cancel", commands.Command{Handler: a.wrap(a.cancel), Description: "Cancel the current action"}},
		{"/panel", commands.Command{
			Handler:     a.wrap(a.panel),
			Description: "Admin panel",
			Capability:  string(access.CapPanel),
			Aliases:     []string{"admin"},
		}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}

	callbacks := map[string]handler{
		render.UniquePanel:      a.panel,
		render.UniquePanelClose: a.closePanel,
		render.UniqueStats:      a.stats,
		render.UniqueAdmins:     a.admins,
		render.UniqueChannels:   a.channels,
		render.UniqueBroadcast:  a.broadcastMenu,
		render.UniqueTop:        a.top,
		render.UniqueList:       a.list,
		gate.CheckUnique:        a.checkSubscription,
	}
	for key, h := range callbacks {
		if err := reg.RegisterCallback(key, a.wrap(h)); err != nil {
			return err
		}
	}

	fb := a.Fallbacks()
	reg.SetCallbackNotFound(fb.UnknownCallback())
	reg.SetTextFallback(a.wrap(a.lookup))
	return nil
}

func (a *App) routes(reg *coretelegram.Registry) []coretelegram.Route {
	fb := a.Fallbacks()
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		Capability: middleware.CapabilityOptions{
			Check: func(c tele.Context, capability string) bool {
				return a.access.Can(tghelpers.BuildContext(c), c.Sender().ID, access.Capability(capability))
			},
			OnReject: a.wrap(a.denied),
		},
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		Dialog:   fsm{a}.Callback,
		NotFound: fb.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(fsm{a}, reg, router.TextOptions{
		UnknownCommand: fb.UnknownCommand(),
		UnknownMedia:   fb.UnknownMedia(),
	})...)
	return routes
}

// fsm feeds text, media and dialog buttons to the conversation engine.
type fsm struct{ a *App }

func (f fsm) Handle(c tele.Context) (bool, error) {
	return f.a.engine.Handle(tghelpers.BuildContext(c), inputOf(c))
}

func (f fsm) Callback(c tele.Context) (bool, error) {
	return f.a.engine.Callback(tghelpers.BuildContext(c), inputOf(c))
}

type fallbacks struct{ a *App }

// Fallbacks returns the handlers for updates nothing else claimed.
func (a *App) Fallbacks() ui.FallbackProvider { return fallbacks{a} }

func (f fallbacks) UnknownCommand() tele.HandlerFunc  { return f.a.wrap(f.a.unknownCommand) }
func (f fallbacks) UnknownMedia() tele.HandlerFunc    { return f.a.wrap(f.a.unknownMedia) }
func (f fallbacks) UnknownCallback() tele.HandlerFunc { return f.a.wrap(f.a.unknownCallback) }

func (a *App) middlewares() []coretelegram.Middleware {
	mws := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), func(c tele.Context) error {
		return tghelpers.Notify(c, render.ReplySlowDown)
	})
	return append(mws,
		coretelegram.Middleware{Name: "touch", Use: a.touchMiddleware},
		coretelegram.Middleware{Name: "monitor", Use: a.monitorMiddleware},
		coretelegram.Middleware{Name: "gate", Use: a.gateMiddleware},
	)
}
