// Package health serves liveness, readiness and statistics over HTTP.
package health

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/monitor"
)

const (
	DefaultListen = ":8081"
	DefaultPath   = "/healthz"

	readyTimeout = 2 * time.Second
)

// Config selects where the server listens. An empty Listen disables it.
type Config struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
	Path   string `yaml:"path" envconfig:"HEALTH_PATH"`
}

// Normalize fills the default live path.
func (c *Config) Normalize() {
	c.Listen = strings.TrimSpace(c.Listen)
	c.Path = strings.TrimSpace(c.Path)
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
}

// Pinger reports whether storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource provides the catalog counters.
type StatsSource interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Deps are the probes behind the routes. A nil Monitor omits the request
// statistics from /stats.
type Deps struct {
	Service string
	Version string
	DB      Pinger
	Stats   StatsSource
	Monitor *monitor.Monitor
}

// Server owns the fiber app.
type Server struct {
	cfg  Config
	deps Deps
	app  *fiber.App

	mu      sync.Mutex
	serving chan struct{}
}

// New builds the app and registers its routes.
func New(cfg Config, deps Deps) *Server {
	cfg.Normalize()
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               deps.Service,
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
	})
	s := &Server{cfg: cfg, deps: deps, app: app}
	registerMiddlewares(app)
	app.Get(cfg.Path, s.Live)
	app.Get("/ready", s.Ready)
	app.Get("/stats", s.StatsView)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Live reports process liveness.
func (s *Server) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": s.deps.Service,
		"version": s.deps.Version,
	})
}

// Ready checks the database.
func (s *Server) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()

	deps := fiber.Map{}
	ready := true
	if s.deps.DB != nil {
		if err := s.deps.DB.Ping(ctx); err != nil {
			deps["database"] = err.Error()
			ready = false
		} else {
			deps["database"] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{"status": "ready", "dependencies": deps})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": deps,
		},
	})
}

// StatsView returns catalog counters and the request monitor snapshot.
func (s *Server) StatsView(c *fiber.Ctx) error {
	body := fiber.Map{}
	if s.deps.Stats != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()
		st, err := s.deps.Stats.Stats(ctx)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": fiber.Map{"code": "STORAGE", "message": "statistics unavailable"},
			})
		}
		body["catalog"] = fiber.Map{
			"items":    st.Items,
			"users":    st.Users,
			"admins":   st.Admins,
			"channels": st.Channels,
			"views":    st.Views,
		}
	}
	if s.deps.Monitor != nil {
		snap := s.deps.Monitor.Snapshot()
		body["requests"] = fiber.Map{
			"hourly":              snap.HourlyRequests,
			"hourly_success_rate": snap.HourlySuccessRate,
			"hourly_active_users": snap.HourlyActiveUsers,
			"last_24h":            snap.Requests24h,
			"uptime_seconds":      int64(snap.Uptime / time.Second),
			"status":              snap.Status,
		}
	}
	return c.JSON(body)
}

// Start listens in the background. It is a no-op when Listen is empty.
func (s *Server) Start() {
	if s.cfg.Listen == "" {
		logger.HTTP.Info("health server disabled", slog.String("event", "http.disabled"))
		return
	}
	s.mu.Lock()
	if s.serving != nil {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	s.serving = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		logger.HTTP.Info("health server listening",
			slog.String("event", "http.listen"),
			slog.String("listen", s.cfg.Listen),
			slog.String("path", s.cfg.Path),
		)
		if err := s.app.Listen(s.cfg.Listen); err != nil && !errors.Is(err, context.Canceled) {
			logger.HTTP.Error("health server stopped",
				slog.String("event", "http.listen"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the server and waits for Listen to return or ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	done := s.serving
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	logger.HTTP.Info("health server stopped", slog.String("event", "http.shutdown"))
	return nil
}
