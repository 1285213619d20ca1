package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type staticStatus struct {
	ready     bool
	scheduled int
	lastTrade time.Time
}

func (s staticStatus) Ready() bool           { return s.ready }
func (s staticStatus) Scheduled() int        { return s.scheduled }
func (s staticStatus) LastCycle() time.Time  { return time.Time{} }
func (s staticStatus) LastTrade() time.Time  { return s.lastTrade }
func (s staticStatus) Uptime() time.Duration { return 90*time.Second + 300*time.Millisecond }

func TestFormatStatus(t *testing.T) {
	msg := FormatStatus(staticStatus{
		ready:     true,
		scheduled: 4,
		lastTrade: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})

	assert.Contains(t, msg, "✅ ready")
	assert.Contains(t, msg, "scheduled=4")
	assert.Contains(t, msg, "uptime=1m30s")
	assert.Contains(t, msg, "last cycle: never")
	assert.Contains(t, msg, "last trade: 2024-05-01T12:00:00Z")
}

func TestFormatStatusStarting(t *testing.T) {
	assert.Contains(t, FormatStatus(staticStatus{}), "starting")
}
