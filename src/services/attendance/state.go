package attendance

import (
	"sort"
	"time"

	"staffclock/src/models"
)

// SessionState สถานะของผู้ใช้ ณ ตอนนี้
type SessionState struct {
	Open       *models.AttendanceRecord  `json:"open"`
	LastClosed *models.AttendanceRecord  `json:"lastClosed"`
	Today      []models.AttendanceRecord `json:"today"`
}

func (s SessionState) ClockedIn() bool {
	return s.Open != nil
}

// SortRecords เรียง date ใหม่ก่อน แล้วตาม timeIn ใหม่ก่อน (ไม่มี timeIn = epoch 0)
func SortRecords(records []models.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return unixMilli(a.TimeIn) > unixMilli(b.TimeIn)
	})
}

func unixMilli(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}
