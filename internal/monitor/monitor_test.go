package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotHourlyAndWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 15, 0, 0, time.UTC)
	m := New(func() time.Time { return now })

	m.Track(1, true)
	now = now.Add(time.Hour)
	for range 19 {
		m.Track(2, true)
	}
	m.Track(3, false)

	s := m.Snapshot()
	assert.Equal(t, 20, s.HourlyRequests)
	assert.Equal(t, 2, s.HourlyActiveUsers)
	assert.InDelta(t, 95.0, s.HourlySuccessRate, 0.001)
	assert.Equal(t, StatusHealthy, s.Status)
	assert.Equal(t, 21, s.Requests24h)
	assert.Equal(t, time.Hour, s.Uptime)

	m.Track(3, false)
	assert.Equal(t, StatusAttention, m.Snapshot().Status)

	now = now.Add(24 * time.Hour)
	s = m.Snapshot()
	assert.Equal(t, 0, s.Requests24h)
	assert.Equal(t, 100.0, s.HourlySuccessRate)
	assert.Equal(t, StatusHealthy, s.Status)
}
