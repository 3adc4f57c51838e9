package health

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/m3rciful/cinebot/core/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

func registerMiddlewares(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestID)
	app.Use(requestLogger)
}

// requestID keeps a caller supplied id or mints a uuid, and puts it on the
// user context so handler logs carry it as rid.
func requestID(c *fiber.Ctx) error {
	rid := c.Get(RequestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(RequestIDHeader, rid)
	c.SetUserContext(logger.WithRID(c.UserContext(), rid))
	return c.Next()
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}

	level := slog.LevelDebug
	outcome := "ok"
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelWarn
		outcome = "fail"
	}
	logger.LogEvent(c.UserContext(), logger.HTTP, level, "http.request",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("code", status),
		slog.String("outcome", outcome),
		slog.Duration("duration", time.Since(start)),
	)
	return err
}
