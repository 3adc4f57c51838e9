// Package app wires the catalog bot: services, Telegram handlers,
// middlewares and the lifecycle hooks run by core/telegram.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cinebot/core/bootstrap"
	"github.com/m3rciful/cinebot/core/buildinfo"
	"github.com/m3rciful/cinebot/core/logger"
	coretelegram "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/state"
	"github.com/m3rciful/cinebot/internal/access"
	"github.com/m3rciful/cinebot/internal/broadcast"
	"github.com/m3rciful/cinebot/internal/catalog"
	"github.com/m3rciful/cinebot/internal/dialog"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/gate"
	"github.com/m3rciful/cinebot/internal/gateway"
	"github.com/m3rciful/cinebot/internal/health"
	"github.com/m3rciful/cinebot/internal/monitor"
	"github.com/m3rciful/cinebot/internal/store"
)

// App holds the long-lived services. Handlers are methods on it.
type App struct {
	cfg *Config

	store     *store.Store
	access    *access.Resolver
	gate      *gate.Gate
	catalog   *catalog.Service
	broadcast *broadcast.Service
	engine    *dialog.Engine
	monitor   *monitor.Monitor
	health    *health.Server

	gw      domain.Gateway
	binder  *gateway.Gateway
	sweeper context.CancelFunc
}

// Options overrides collaborators in tests.
type Options struct {
	Gateway domain.Gateway
	Now     func() time.Time
}

// New builds the services over an open database.
func New(cfg *Config, db *sqlx.DB, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	a := &App{cfg: cfg, store: store.New(db).WithClock(opts.Now)}

	if opts.Gateway != nil {
		a.gw = opts.Gateway
	} else {
		a.binder = gateway.New()
		a.gw = a.binder
	}

	a.access = access.NewResolver(a.store, cfg.Telegram.SuperAdminID)
	a.gate = gate.New(a.store, a.gw)
	a.catalog = catalog.NewService(a.store, a.gw)
	a.broadcast = broadcast.NewService(a.store, a.gw, broadcast.Options{
		Concurrency: cfg.Broadcast.Concurrency,
		PerSecond:   cfg.Broadcast.PerSecond,
		Burst:       cfg.Broadcast.Burst,
	})
	a.monitor = monitor.New(opts.Now)

	states := state.NewStore[dialog.State](
		state.WithTTL(cfg.Dialog.TTL),
		state.WithClock(opts.Now),
		state.WithEvictHook(func(userID int64) {
			logger.Debug(context.Background(), "service.dialog", "dialog.expired",
				slog.Int64("user_id", userID),
			)
		}),
	)
	a.engine = dialog.New(dialog.Deps{
		Access:                a.access,
		Catalog:               a.catalog,
		Broadcast:             a.broadcast,
		Settings:              a.store,
		Gateway:               a.gw,
		DistributionChannelID: cfg.Bot.DistributionChannelID,
		Now:                   opts.Now,
	}, states)

	a.health = health.New(cfg.Health, health.Deps{
		Service: "cinebot",
		Version: buildinfo.String(),
		DB:      a.store,
		Stats:   a.store,
		Monitor: a.monitor,
	})
	return a
}

// Bootstrap initializes logging and storage, seeds the configured channels
// and builds the app.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Modules: bootstrap.Modules{
			Seeders: []bootstrap.Seeder{ChannelSeeder(cfg.Bot.RequiredChannels)},
		},
	})
	if err != nil {
		return nil, err
	}
	return New(cfg, res.DB, Options{}), nil
}

// TelegramRunOptions assembles the registry, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}
	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: a.middlewares(),
		Routes:      a.routes(reg),
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	if a.binder != nil && rt.Bot != nil {
		a.binder.Bind(rt.Bot)
	}
	if rt.Dispatcher != nil {
		a.catalog.UseDispatcher(rt.Dispatcher)
	}
	if rt.Bot != nil && rt.Bot.Me != nil {
		a.engine.SetBotUsername(rt.Bot.Me.Username)
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	a.sweeper = cancel
	go a.engine.States().Run(sweepCtx, a.cfg.Dialog.SweepInterval)

	a.health.Start()
	logger.Info(ctx, "app", "app.wired",
		slog.Int64("distribution_channel_id", a.cfg.Bot.DistributionChannelID),
		slog.Duration("dialog_ttl", a.cfg.Dialog.TTL),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ coretelegram.Runtime) error {
	if a.sweeper != nil {
		a.sweeper()
	}
	if err := a.health.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "http", "http.shutdown",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return a.store.Close()
}
