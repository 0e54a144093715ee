package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var myt = time.FixedZone("MYT", 8*60*60)

func at(hour, minute, second int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, second, 0, myt)
}

func TestAmpangMorningBrackets(t *testing.T) {
	p := DefaultPolicy()

	for minute := 0; minute < 60; minute++ {
		want := at(8, 0, 0)
		switch {
		case minute <= 5:
			want = at(7, 0, 0)
		case minute <= 15:
			want = at(7, 15, 0)
		case minute <= 30:
			want = at(7, 30, 0)
		}
		got := p.Round(at(7, minute, 42), "Ampang")
		assert.Truef(t, want.Equal(got), "07:%02d:42 → got %s want %s", minute, got.Format("15:04:05"), want.Format("15:04:05"))
	}
}

func TestAmpangOtherHoursUntouched(t *testing.T) {
	p := DefaultPolicy()
	for _, hour := range []int{0, 6, 8, 9, 13, 23} {
		raw := at(hour, 3, 17)
		assert.True(t, raw.Equal(p.Round(raw, "Ampang")), "hour %d", hour)
	}
}

func TestRoundingIsIdempotent(t *testing.T) {
	p := DefaultPolicy()
	for minute := 0; minute < 60; minute++ {
		once := p.Round(at(7, minute, 0), "ampang")
		assert.True(t, once.Equal(p.Round(once, "ampang")))
	}
}

func TestAreaMatchIsCaseInsensitiveSubstring(t *testing.T) {
	p := DefaultPolicy()

	t.Run("Ampang Jaya", func(t *testing.T) {
		assert.True(t, at(7, 0, 0).Equal(p.Round(at(7, 3, 0), "Ampang Jaya")))
	})
	t.Run("upper case", func(t *testing.T) {
		assert.True(t, at(7, 15, 0).Equal(p.Round(at(7, 9, 0), "TAMAN AMPANG UTAMA")))
	})
	t.Run("other area", func(t *testing.T) {
		raw := at(7, 3, 0)
		assert.True(t, raw.Equal(p.Round(raw, "Cheras")))
	})
	t.Run("Bangsar at nine", func(t *testing.T) {
		raw := at(9, 0, 0)
		assert.True(t, raw.Equal(p.Round(raw, "Bangsar")))
	})
	t.Run("empty area", func(t *testing.T) {
		raw := at(7, 3, 0)
		assert.True(t, raw.Equal(p.Round(raw, "")))
	})
}

func TestCustomRuleFirstMatchWins(t *testing.T) {
	shift := Rule{
		Name:    "plus-hour",
		Matches: AreaContains("bangsar"),
		Adjust:  func(t time.Time) time.Time { return t.Add(time.Hour) },
	}
	p := NewPolicy(shift, AmpangShiftRule())

	assert.True(t, at(10, 0, 0).Equal(p.Round(at(9, 0, 0), "Bangsar South")))
	assert.True(t, at(7, 0, 0).Equal(p.Round(at(7, 1, 0), "Ampang")))
}
