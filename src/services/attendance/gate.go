package attendance

import (
	"fmt"
	"time"

	"staffclock/src/models"
)

type Action string

const (
	ClockIn  Action = "clockIn"
	ClockOut Action = "clockOut"
)

type DecisionKind string

const (
	Allow                 DecisionKind = "ALLOW"
	SplitRequired         DecisionKind = "SPLIT_REQUIRED"
	BlockLunch            DecisionKind = "LUNCH_BREAK"
	BlockCooldown         DecisionKind = "COOLDOWN"
	BlockAlreadyClockedIn DecisionKind = "ALREADY_CLOCKED_IN"
	BlockNotClockedIn     DecisionKind = "NOT_CLOCKED_IN"
)

const (
	CooldownPeriod = 60 * time.Minute
	lunchHour      = 12
)

// Decision ผลของ Gate; Reason มีเฉพาะกรณีที่ถูก block
type Decision struct {
	Kind             DecisionKind `json:"kind"`
	Reason           string       `json:"reason,omitempty"`
	RemainingMinutes int          `json:"remainingMinutes,omitempty"`
}

func (d Decision) Blocked() bool {
	return d.Kind != Allow && d.Kind != SplitRequired
}

// Gate ตัดสินว่าคำขอ clock-in/out ทำได้ไหม ไม่มี side effect
type Gate struct {
	loc *time.Location
}

func NewGate(loc *time.Location) *Gate {
	return &Gate{loc: loc}
}

func (g *Gate) Decide(action Action, now time.Time, state SessionState) Decision {
	now = now.In(g.loc)

	if now.Hour() == lunchHour {
		return Decision{Kind: BlockLunch, Reason: "Clock in/out is not allowed during lunch break (12:00-13:00)"}
	}

	switch action {
	case ClockIn:
		if state.Open != nil {
			return Decision{Kind: BlockAlreadyClockedIn, Reason: "You are already clocked in"}
		}
		if last := state.LastClosed; last != nil && last.TimeOut != nil {
			elapsed := now.Sub(*last.TimeOut)
			if elapsed < CooldownPeriod {
				remaining := int((CooldownPeriod - elapsed + time.Minute - 1) / time.Minute)
				return Decision{
					Kind:             BlockCooldown,
					Reason:           fmt.Sprintf("Please wait %d more minute(s) before clocking in again", remaining),
					RemainingMinutes: remaining,
				}
			}
		}
		return Decision{Kind: Allow}

	case ClockOut:
		if state.Open == nil {
			return Decision{Kind: BlockNotClockedIn, Reason: "You are not clocked in"}
		}
		if state.Open.TimeIn != nil && localDate(*state.Open.TimeIn, g.loc) != localDate(now, g.loc) {
			return Decision{Kind: SplitRequired}
		}
		return Decision{Kind: Allow}
	}

	return Decision{Kind: BlockNotClockedIn, Reason: fmt.Sprintf("Unknown action %q", action)}
}

func localDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(models.DateLayout)
}
