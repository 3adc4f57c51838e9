package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/internal/domain"
	"github.com/m3rciful/cinebot/internal/health"
	"github.com/m3rciful/cinebot/internal/monitor"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type stats struct {
	s   domain.Stats
	err error
}

func (s stats) Stats(context.Context) (domain.Stats, error) { return s.s, s.err }

func get(t *testing.T, srv *health.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestLiveUsesConfiguredPath(t *testing.T) {
	srv := health.New(health.Config{Path: "alive"}, health.Deps{Service: "cinebot", Version: "v1"})

	resp, body := get(t, srv, "/alive")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "cinebot", body["service"])
	assert.NotEmpty(t, resp.Header.Get(health.RequestIDHeader))

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, health.DefaultPath, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := health.New(health.Config{}, health.Deps{})
	req := httptest.NewRequest(http.MethodGet, health.DefaultPath, nil)
	req.Header.Set(health.RequestIDHeader, "abc-123")
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(health.RequestIDHeader))
}

func TestReady(t *testing.T) {
	srv := health.New(health.Config{}, health.Deps{DB: pinger{}})
	resp, body := get(t, srv, "/ready")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	srv = health.New(health.Config{}, health.Deps{DB: pinger{err: errors.New("db down")}})
	resp, body = get(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errBody["code"])
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mon := monitor.New(func() time.Time { return now })
	mon.Track(1, true)
	mon.Track(2, false)

	srv := health.New(health.Config{}, health.Deps{
		Stats:   stats{s: domain.Stats{Items: 3, Users: 5, Views: 9}},
		Monitor: mon,
	})
	resp, body := get(t, srv, "/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	catalog := body["catalog"].(map[string]any)
	assert.EqualValues(t, 3, catalog["items"])
	assert.EqualValues(t, 9, catalog["views"])
	requests := body["requests"].(map[string]any)
	assert.EqualValues(t, 2, requests["hourly"])
	assert.EqualValues(t, 50, requests["hourly_success_rate"])
	assert.Equal(t, monitor.StatusAttention, requests["status"])
}

func TestStatsStorageFailure(t *testing.T) {
	srv := health.New(health.Config{}, health.Deps{Stats: stats{err: errors.New("boom")}})
	resp, _ := get(t, srv, "/stats")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := health.New(health.Config{}, health.Deps{})
	srv.Start()
	assert.NoError(t, srv.Shutdown(context.Background()))
}
