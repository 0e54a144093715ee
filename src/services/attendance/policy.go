package attendance

import (
	"strings"
	"time"
)

// Rule กฎปัดเวลาเฉพาะสถานที่
type Rule struct {
	Name    string
	Matches func(area string) bool
	Adjust  func(t time.Time) time.Time
}

// Policy ใช้ rule แรกที่ตรงกับ area; ไม่ตรงเลย = คืนเวลาเดิม
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy กฎที่ใช้งานจริงตอนนี้
func DefaultPolicy() *Policy {
	return NewPolicy(AmpangShiftRule())
}

// Round ปัดเวลา t ตาม area ของตำแหน่งที่ resolve ได้
func (p *Policy) Round(t time.Time, area string) time.Time {
	for _, r := range p.rules {
		if r.Matches(area) {
			return r.Adjust(t)
		}
	}
	return t
}

// AreaContains match แบบไม่สนตัวพิมพ์
func AreaContains(substr string) func(string) bool {
	substr = strings.ToLower(substr)
	return func(area string) bool {
		return strings.Contains(strings.ToLower(area), substr)
	}
}

// AmpangShiftRule ช่วง 07:00-07:59 ปัดเป็น 07:00 / 07:15 / 07:30 / 08:00
func AmpangShiftRule() Rule {
	return Rule{
		Name:    "ampang-morning-shift",
		Matches: AreaContains("ampang"),
		Adjust:  roundMorningShift,
	}
}

func roundMorningShift(t time.Time) time.Time {
	if t.Hour() != 7 {
		return t
	}
	y, m, d := t.Date()
	at := func(hour, minute int) time.Time {
		return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
	}
	switch minute := t.Minute(); {
	case minute <= 5:
		return at(7, 0)
	case minute <= 15:
		return at(7, 15)
	case minute <= 30:
		return at(7, 30)
	default:
		return at(8, 0)
	}
}
