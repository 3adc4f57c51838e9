package telegram

import (
	"log/slog"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/netutil"
)

const (
	defaultDialTimeout       = 5 * time.Second
	defaultTLSHandshake      = 5 * time.Second
	defaultIdleConnTimeout   = 30 * time.Second
	defaultClientTimeout     = 30 * time.Second
	defaultKeepAliveInterval = 30 * time.Second
)

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Every call is attempted once; failures are logged and returned as is.
// timeout bounds a whole request and must exceed the long-poll timeout.
func BuildHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshake,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingTransport{base: transport},
	}
}

// loggingTransport records the Bot API method, latency and failure class.
type loggingTransport struct {
	base http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	method := path.Base(req.URL.Path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	took := time.Since(start)

	if err != nil {
		// getUpdates errors surface on every network blip; keep them at debug.
		level := slog.LevelWarn
		if method == "getUpdates" {
			level = slog.LevelDebug
		}
		logger.LogEvent(req.Context(), logger.TWire, level, "api.fail",
			slog.String("endpoint", method),
			slog.String("err", netutil.RedactErr(err)),
			slog.String("error_kind", netutil.Classify(err)),
			slog.Duration("duration", took),
		)
		return nil, err
	}
	if method != "getUpdates" && logger.ShouldSampleDebug() {
		logger.LogEvent(req.Context(), logger.TWire, slog.LevelDebug, "api.call",
			slog.String("endpoint", method),
			slog.Int("http_status", resp.StatusCode),
			slog.Duration("duration", took),
		)
	}
	return resp, nil
}
