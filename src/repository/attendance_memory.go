package repository

import (
	"context"
	"sync"
	"time"

	"staffclock/src/models"

	"github.com/google/uuid"
)

// MemoryAttendanceRepository เก็บ record ไว้ใน memory ใช้ตอน dev (STORE_DRIVER=memory) และใน test
type MemoryAttendanceRepository struct {
	mu      sync.RWMutex
	records map[string]models.AttendanceRecord
	order   []string

	// FailCreate / FailUpdate / FailContinuation ใช้จำลองความล้มเหลวใน test
	FailCreate       error
	FailUpdate       error
	FailContinuation error
	// PersistBeforeFail บันทึกลงก่อนแล้วค่อยคืน FailCreate (จำลอง ack หาย)
	PersistBeforeFail bool
}

func NewMemoryAttendanceRepository() *MemoryAttendanceRepository {
	return &MemoryAttendanceRepository{records: map[string]models.AttendanceRecord{}}
}

func (r *MemoryAttendanceRepository) collect(match func(models.AttendanceRecord) bool) []models.AttendanceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.AttendanceRecord
	for _, id := range r.order {
		rec := r.records[id]
		if match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r *MemoryAttendanceRepository) FindByUserAndDate(_ context.Context, userID, date string) ([]models.AttendanceRecord, error) {
	return r.collect(func(rec models.AttendanceRecord) bool {
		return rec.UserID == userID && rec.Date == date
	}), nil
}

func (r *MemoryAttendanceRepository) FindByUser(_ context.Context, userID string) ([]models.AttendanceRecord, error) {
	return r.collect(func(rec models.AttendanceRecord) bool { return rec.UserID == userID }), nil
}

func (r *MemoryAttendanceRepository) FindByDateRange(_ context.Context, start, end string) ([]models.AttendanceRecord, error) {
	return r.collect(func(rec models.AttendanceRecord) bool {
		return rec.Date >= start && rec.Date <= end
	}), nil
}

func (r *MemoryAttendanceRepository) FindOpenSession(_ context.Context, userID string) (*models.AttendanceRecord, error) {
	var found *models.AttendanceRecord
	for _, rec := range r.collect(func(rec models.AttendanceRecord) bool { return rec.UserID == userID && rec.IsOpen() }) {
		rec := rec
		if found == nil || timeOrZero(rec.TimeIn).After(timeOrZero(found.TimeIn)) {
			found = &rec
		}
	}
	return found, nil
}

func (r *MemoryAttendanceRepository) FindLatestClosed(_ context.Context, userID string) (*models.AttendanceRecord, error) {
	var found *models.AttendanceRecord
	for _, rec := range r.collect(func(rec models.AttendanceRecord) bool { return rec.UserID == userID && !rec.IsOpen() }) {
		rec := rec
		if found == nil || rec.TimeOut.After(*found.TimeOut) {
			found = &rec
		}
	}
	return found, nil
}

func (r *MemoryAttendanceRepository) Create(_ context.Context, rec *models.AttendanceRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil && !r.PersistBeforeFail {
		return "", r.FailCreate
	}
	id := r.insertLocked(*rec)
	rec.ID = id
	if r.FailCreate != nil {
		return "", r.FailCreate
	}
	return id, nil
}

func (r *MemoryAttendanceRepository) insertLocked(rec models.AttendanceRecord) string {
	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.records[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	return rec.ID
}

func (r *MemoryAttendanceRepository) Update(_ context.Context, id string, fields models.RecordUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	rec, ok := r.records[id]
	if !ok {
		return ErrNotFound
	}
	fields.Apply(&rec)
	r.records[id] = rec
	return nil
}

func (r *MemoryAttendanceRepository) ApplySplit(_ context.Context, plan models.SplitPlan) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[plan.CloseID]
	if !ok {
		return nil, ErrNotFound
	}
	upd := plan.Close
	upd.SplitID = plan.SplitID
	upd.Apply(&rec)
	r.records[plan.CloseID] = rec

	if r.FailContinuation != nil {
		err := r.FailContinuation
		r.FailContinuation = nil
		return nil, wrapPartial(err)
	}

	ids := make([]string, 0, len(plan.Continuations))
	for _, c := range plan.Continuations {
		if id, ok := r.findSplitLocked(plan.SplitID, c.Date); ok {
			ids = append(ids, id)
			continue
		}
		c.SplitID = plan.SplitID
		ids = append(ids, r.insertLocked(c))
	}
	return ids, nil
}

func (r *MemoryAttendanceRepository) findSplitLocked(splitID, date string) (string, bool) {
	for _, id := range r.order {
		rec := r.records[id]
		if rec.SplitID == splitID && rec.Date == date {
			return id, true
		}
	}
	return "", false
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
