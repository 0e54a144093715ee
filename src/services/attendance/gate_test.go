package attendance

import (
	"testing"
	"time"

	"staffclock/src/models"

	"github.com/stretchr/testify/assert"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestGateLunchBlocksBothActions(t *testing.T) {
	g := NewGate(myt)
	open := &models.AttendanceRecord{TimeIn: ptrTime(at(9, 0, 0))}

	for _, minute := range []int{0, 30, 59} {
		d := g.Decide(ClockIn, at(12, minute, 0), SessionState{})
		assert.Equal(t, BlockLunch, d.Kind)
		assert.True(t, d.Blocked())

		d = g.Decide(ClockOut, at(12, minute, 0), SessionState{Open: open})
		assert.Equal(t, BlockLunch, d.Kind)
	}

	assert.Equal(t, Allow, g.Decide(ClockIn, at(11, 59, 59), SessionState{}).Kind)
	assert.Equal(t, Allow, g.Decide(ClockIn, at(13, 0, 0), SessionState{}).Kind)
}

func TestGateLunchUsesConfiguredZone(t *testing.T) {
	g := NewGate(myt)
	// 04:30 UTC = 12:30 MYT
	d := g.Decide(ClockIn, time.Date(2024, 3, 4, 4, 30, 0, 0, time.UTC), SessionState{})
	assert.Equal(t, BlockLunch, d.Kind)
}

func TestGateCooldown(t *testing.T) {
	g := NewGate(myt)
	last := &models.AttendanceRecord{TimeIn: ptrTime(at(8, 0, 0)), TimeOut: ptrTime(at(10, 0, 0))}

	t.Run("thirty minutes after clock-out", func(t *testing.T) {
		d := g.Decide(ClockIn, at(10, 30, 0), SessionState{LastClosed: last})
		assert.Equal(t, BlockCooldown, d.Kind)
		assert.Equal(t, 30, d.RemainingMinutes)
		assert.Contains(t, d.Reason, "30")
	})
	t.Run("fifty-nine minutes after clock-out", func(t *testing.T) {
		d := g.Decide(ClockIn, at(10, 59, 0), SessionState{LastClosed: last})
		assert.Equal(t, BlockCooldown, d.Kind)
		assert.Equal(t, 1, d.RemainingMinutes)
	})
	t.Run("partial minute rounds up", func(t *testing.T) {
		d := g.Decide(ClockIn, at(10, 59, 30), SessionState{LastClosed: last})
		assert.Equal(t, BlockCooldown, d.Kind)
		assert.Equal(t, 1, d.RemainingMinutes)
	})
	t.Run("exactly sixty minutes", func(t *testing.T) {
		d := g.Decide(ClockIn, at(11, 0, 0), SessionState{LastClosed: last})
		assert.Equal(t, Allow, d.Kind)
	})
	t.Run("clock-out is not subject to cooldown", func(t *testing.T) {
		open := &models.AttendanceRecord{TimeIn: ptrTime(at(10, 5, 0))}
		d := g.Decide(ClockOut, at(10, 10, 0), SessionState{Open: open, LastClosed: last})
		assert.Equal(t, Allow, d.Kind)
	})
}

func TestGateSessionChecks(t *testing.T) {
	g := NewGate(myt)
	open := &models.AttendanceRecord{TimeIn: ptrTime(at(9, 0, 0))}

	assert.Equal(t, BlockAlreadyClockedIn, g.Decide(ClockIn, at(10, 0, 0), SessionState{Open: open}).Kind)
	assert.Equal(t, BlockNotClockedIn, g.Decide(ClockOut, at(10, 0, 0), SessionState{}).Kind)
	assert.Equal(t, Allow, g.Decide(ClockOut, at(17, 0, 0), SessionState{Open: open}).Kind)
	assert.True(t, g.Decide(Action("lunch"), at(10, 0, 0), SessionState{}).Blocked())
}

func TestGateSplitAcrossMidnight(t *testing.T) {
	g := NewGate(myt)
	open := &models.AttendanceRecord{TimeIn: ptrTime(time.Date(2024, 3, 4, 22, 0, 0, 0, myt))}

	d := g.Decide(ClockOut, time.Date(2024, 3, 5, 2, 0, 0, 0, myt), SessionState{Open: open})
	assert.Equal(t, SplitRequired, d.Kind)
	assert.False(t, d.Blocked())

	// เที่ยงวันถัดไปยังโดน lunch ก่อน
	d = g.Decide(ClockOut, time.Date(2024, 3, 5, 12, 15, 0, 0, myt), SessionState{Open: open})
	assert.Equal(t, BlockLunch, d.Kind)
}
