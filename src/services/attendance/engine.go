package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"staffclock/src/models"
	"staffclock/src/repository"

	"github.com/google/uuid"
)

const UnknownCity = "Unknown"

var ErrRecordFailed = errors.New("failed to record attendance")

// BlockedError Gate ไม่อนุญาต ไม่มีการเขียนข้อมูล
type BlockedError struct {
	Decision Decision
}

func (e *BlockedError) Error() string {
	return e.Decision.Reason
}

// Repository ที่เก็บ AttendanceRecord (mongo / postgres / memory)
type Repository interface {
	FindByUserAndDate(ctx context.Context, userID, date string) ([]models.AttendanceRecord, error)
	FindByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error)
	FindByDateRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error)
	FindOpenSession(ctx context.Context, userID string) (*models.AttendanceRecord, error)
	FindLatestClosed(ctx context.Context, userID string) (*models.AttendanceRecord, error)
	Create(ctx context.Context, rec *models.AttendanceRecord) (string, error)
	Update(ctx context.Context, id string, fields models.RecordUpdate) error
	ApplySplit(ctx context.Context, plan models.SplitPlan) ([]string, error)
}

// Resolver แปลงพิกัดเป็นชื่อสถานที่
type Resolver interface {
	Resolve(ctx context.Context, lat, lng float64) (models.Place, error)
}

// SplitReconciler ส่งงานไปเขียน record ต่อเนื่องที่ยังขาดให้ครบ
type SplitReconciler interface {
	EnqueueSplit(ctx context.Context, plan models.SplitPlan) error
}

type GeoSample struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Options StoreTimeout ครอบทั้งการรอ lock และการอ่าน/เขียน store
type Options struct {
	Location     *time.Location
	GeoTimeout   time.Duration
	StoreTimeout time.Duration
	Policy       *Policy
	Locker       Locker
	Reconciler   SplitReconciler
}

type Result struct {
	Action      Action                    `json:"action"`
	Decision    Decision                  `json:"decision"`
	Record      *models.AttendanceRecord  `json:"record"`
	Created     []models.AttendanceRecord `json:"created,omitempty"`
	RecordIDs   []string                  `json:"recordIds"`
	Location    models.Location           `json:"location"`
	Reconciling bool                      `json:"reconciling,omitempty"`
	State       SessionState              `json:"state"`
}

// Engine ประมวลผล clock-in/out: resolve ตำแหน่ง → lock → Gate → ปัดเวลา → บันทึก
type Engine struct {
	repo       Repository
	resolver   Resolver
	locker     Locker
	reconciler SplitReconciler
	policy     *Policy
	gate       *Gate
	loc        *time.Location
	geoTimeout time.Duration
	storeTO    time.Duration
}

func NewEngine(repo Repository, resolver Resolver, opts Options) *Engine {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.GeoTimeout <= 0 {
		opts.GeoTimeout = 4 * time.Second
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPolicy()
	}
	if opts.Locker == nil {
		opts.Locker = NewKeyedMutex()
	}
	return &Engine{
		repo:       repo,
		resolver:   resolver,
		locker:     opts.Locker,
		reconciler: opts.Reconciler,
		policy:     opts.Policy,
		gate:       NewGate(opts.Location),
		loc:        opts.Location,
		geoTimeout: opts.GeoTimeout,
		storeTO:    opts.StoreTimeout,
	}
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Clock รับคำขอ clock-in/out หนึ่งครั้ง
func (e *Engine) Clock(ctx context.Context, action Action, who models.Identity, raw time.Time, sample GeoSample) (*Result, error) {
	// store เก็บได้ละเอียดแค่ millisecond; ตัดไว้ก่อนเพื่อให้ตรวจ read-after-write ได้
	raw = raw.Truncate(time.Millisecond)
	location := e.resolve(ctx, sample)

	if e.storeTO > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.storeTO)
		defer cancel()
	}

	unlock, err := e.locker.Lock(ctx, who.UID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}
	defer unlock()

	state, err := e.loadState(ctx, who.UID, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}

	// split ครั้งก่อนเขียนไม่ครบ: ทำให้ครบก่อนตัดสินคำขอนี้
	if pending := e.pendingSplit(state); pending != nil {
		res, err := e.resumeSplit(ctx, *pending)
		if err != nil {
			return nil, err
		}
		if action == ClockOut {
			res.Action = action
			res.Decision = Decision{Kind: SplitRequired}
			res.Location = *pending.LocationOut
			if res.State, err = e.loadState(ctx, who.UID, raw); err != nil {
				log.Println("⚠️ Failed to reload session state:", who.UID, err)
			}
			return res, nil
		}
		if state, err = e.loadState(ctx, who.UID, raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
		}
	}

	decision := e.gate.Decide(action, raw, state)
	if decision.Blocked() {
		return nil, &BlockedError{Decision: decision}
	}

	var res *Result
	switch {
	case action == ClockIn:
		res, err = e.clockIn(ctx, who, raw, location)
	case decision.Kind == SplitRequired && !raw.Before(*state.Open.TimeIn):
		res, err = e.clockOutSplit(ctx, *state.Open, raw, location)
	default:
		res, err = e.clockOut(ctx, *state.Open, raw, location)
	}
	if err != nil {
		return nil, err
	}

	res.Action = action
	res.Decision = decision
	res.Location = location
	if res.State, err = e.loadState(ctx, who.UID, raw); err != nil {
		log.Println("⚠️ Failed to reload session state:", who.UID, err)
	}
	return res, nil
}

// State สถานะปัจจุบันของผู้ใช้ (หน้า dashboard)
func (e *Engine) State(ctx context.Context, userID string, now time.Time) (SessionState, error) {
	return e.loadState(ctx, userID, now)
}

// History record ล่าสุดของผู้ใช้ limit <= 0 = ทั้งหมด
func (e *Engine) History(ctx context.Context, userID string, limit int) ([]models.AttendanceRecord, error) {
	records, err := e.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	SortRecords(records)
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (e *Engine) loadState(ctx context.Context, userID string, now time.Time) (SessionState, error) {
	var state SessionState
	var err error

	if state.Open, err = e.repo.FindOpenSession(ctx, userID); err != nil {
		return state, err
	}
	if state.LastClosed, err = e.repo.FindLatestClosed(ctx, userID); err != nil {
		return state, err
	}
	if state.Today, err = e.repo.FindByUserAndDate(ctx, userID, localDate(now, e.loc)); err != nil {
		return state, err
	}
	SortRecords(state.Today)
	return state, nil
}

type resolved struct {
	place models.Place
	err   error
}

// resolve ไม่เคย fail: หมดเวลา/ผิดพลาด = สถานที่ Unknown
func (e *Engine) resolve(ctx context.Context, s GeoSample) models.Location {
	location := models.Location{Lat: s.Lat, Lng: s.Lng, City: UnknownCity}
	if e.resolver == nil {
		return location
	}

	ctx, cancel := context.WithTimeout(ctx, e.geoTimeout)
	defer cancel()

	ch := make(chan resolved, 1)
	go func() {
		p, err := e.resolver.Resolve(ctx, s.Lat, s.Lng)
		ch <- resolved{place: p, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			log.Println("⚠️ Geocoding error, using unknown location:", r.err)
			return location
		}
		if r.place.City != "" {
			location.City = r.place.City
		}
		location.Area = r.place.Area
	case <-ctx.Done():
		log.Println("⚠️ Geocoding timed out, using unknown location")
	}
	return location
}

func (e *Engine) clockIn(ctx context.Context, who models.Identity, raw time.Time, location models.Location) (*Result, error) {
	local := raw.In(e.loc)
	rounded := e.policy.Round(local, location.Area)

	rec := &models.AttendanceRecord{
		UserID:         who.UID,
		DisplayName:    who.DisplayName,
		Email:          who.Email,
		Date:           local.Format(models.DateLayout),
		TimeIn:         &rounded,
		LocationIn:     &location,
		OriginalTimeIn: &raw,
		CreatedAt:      time.Now(),
	}

	id, err := e.repo.Create(ctx, rec)
	if err != nil {
		// ack อาจหายระหว่างทาง: ถ้า record ถูกสร้างไปแล้วจริงถือว่าสำเร็จ
		if open, rerr := e.repo.FindOpenSession(ctx, who.UID); rerr == nil && open != nil &&
			open.OriginalTimeIn != nil && open.OriginalTimeIn.Equal(raw) {
			log.Println("⚠️ Clock-in write reported an error but the record exists:", open.ID, err)
			return &Result{Record: open, RecordIDs: []string{open.ID}}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}
	rec.ID = id
	log.Printf("✅ Clock-in %s at %s (raw %s)", who.UID, rounded.Format(time.RFC3339), local.Format(time.RFC3339))
	return &Result{Record: rec, RecordIDs: []string{id}}, nil
}

func (e *Engine) roundOut(open models.AttendanceRecord, raw time.Time, area string, floor time.Time) time.Time {
	out := e.policy.Round(raw.In(e.loc), area)
	if open.TimeIn != nil && floor.IsZero() {
		floor = open.TimeIn.In(e.loc)
	}
	if out.Before(floor) {
		out = floor
	}
	return out
}

func (e *Engine) clockOut(ctx context.Context, open models.AttendanceRecord, raw time.Time, location models.Location) (*Result, error) {
	out := e.roundOut(open, raw, location.Area, time.Time{})
	upd := models.RecordUpdate{TimeOut: &out, LocationOut: &location, OriginalTimeOut: &raw}

	if err := e.repo.Update(ctx, open.ID, upd); err != nil {
		if last, rerr := e.repo.FindLatestClosed(ctx, open.UserID); rerr == nil && last != nil &&
			last.ID == open.ID && last.OriginalTimeOut != nil && last.OriginalTimeOut.Equal(raw) {
			log.Println("⚠️ Clock-out write reported an error but the record is closed:", open.ID, err)
			return &Result{Record: last, RecordIDs: []string{last.ID}}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}
	upd.Apply(&open)
	log.Printf("✅ Clock-out %s at %s", open.UserID, out.Format(time.RFC3339))
	return &Result{Record: &open, RecordIDs: []string{open.ID}}, nil
}

// PlanSplit แบ่ง session ที่ข้ามเที่ยงคืนเป็น record ละวัน
// record แรกเก็บ originalTimeOut ไว้ด้วย เพื่อสร้าง record ต่อเนื่องใหม่ได้ถ้าเขียนไม่ครบ
func (e *Engine) PlanSplit(open models.AttendanceRecord, raw time.Time, location models.Location) models.SplitPlan {
	return e.planSplit(open, raw, location, uuid.NewString())
}

func (e *Engine) planSplit(open models.AttendanceRecord, raw time.Time, location models.Location, splitID string) models.SplitPlan {
	start := open.TimeIn.In(e.loc)
	lastDate := localDate(raw, e.loc)
	y, m, d := start.Date()
	endOfDay := func(day int) time.Time { return time.Date(y, m, day, 23, 59, 59, 0, e.loc) }

	closeAt := endOfDay(d)
	closeLoc := location
	closeRaw := raw
	plan := models.SplitPlan{
		SplitID: splitID,
		CloseID: open.ID,
		Close:   models.RecordUpdate{TimeOut: &closeAt, LocationOut: &closeLoc, OriginalTimeOut: &closeRaw},
	}

	for i := 1; ; i++ {
		dayStart := time.Date(y, m, d+i, 0, 0, 0, 0, e.loc)
		date := dayStart.Format(models.DateLayout)
		if date > lastDate {
			break
		}
		locIn, locOut := location, location
		rec := models.AttendanceRecord{
			UserID:      open.UserID,
			DisplayName: open.DisplayName,
			Email:       open.Email,
			Date:        date,
			TimeIn:      &dayStart,
			LocationIn:  &locIn,
			LocationOut: &locOut,
			CreatedAt:   time.Now(),
		}
		if date == lastDate {
			out := e.roundOut(open, raw, location.Area, dayStart)
			original := raw
			rec.TimeOut = &out
			rec.OriginalTimeOut = &original
		} else {
			out := endOfDay(d + i)
			rec.TimeOut = &out
		}
		plan.Continuations = append(plan.Continuations, rec)
	}
	return plan
}

func (e *Engine) clockOutSplit(ctx context.Context, open models.AttendanceRecord, raw time.Time, location models.Location) (*Result, error) {
	return e.applySplit(ctx, open, e.PlanSplit(open, raw, location))
}

// pendingSplit record ปิดล่าสุดเป็น record แรกของ split แต่ record วันสุดท้ายยังไม่มี
// (record ต่อเนื่องมี timeOut หลัง record แรกเสมอ)
func (e *Engine) pendingSplit(state SessionState) *models.AttendanceRecord {
	last := state.LastClosed
	if state.Open != nil || last == nil || last.SplitID == "" ||
		last.OriginalTimeOut == nil || last.LocationOut == nil || last.TimeIn == nil {
		return nil
	}
	if localDate(*last.OriginalTimeOut, e.loc) == last.Date {
		return nil
	}
	return last
}

// resumeSplit สร้าง record ต่อเนื่องจากข้อมูลใน record แรก ใช้ splitId เดิมจึงเขียนซ้ำได้
func (e *Engine) resumeSplit(ctx context.Context, first models.AttendanceRecord) (*Result, error) {
	log.Println("⚠️ Completing unfinished split:", first.SplitID)
	plan := e.planSplit(first, *first.OriginalTimeOut, *first.LocationOut, first.SplitID)
	return e.applySplit(ctx, first, plan)
}

func (e *Engine) applySplit(ctx context.Context, open models.AttendanceRecord, plan models.SplitPlan) (*Result, error) {
	ids, err := e.repo.ApplySplit(ctx, plan)
	reconciling := false
	if err != nil {
		if !errors.Is(err, repository.ErrPartialSplit) || e.reconciler == nil {
			return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
		}
		if qerr := e.reconciler.EnqueueSplit(ctx, plan); qerr != nil {
			return nil, fmt.Errorf("%w: %w", ErrRecordFailed, errors.Join(err, qerr))
		}
		log.Println("⚠️ Split partially persisted, reconciliation queued:", plan.SplitID, err)
		reconciling = true
	}

	plan.Close.Apply(&open)
	open.SplitID = plan.SplitID

	created := plan.Continuations
	for i := range created {
		created[i].SplitID = plan.SplitID
		if i < len(ids) {
			created[i].ID = ids[i]
		}
	}
	log.Printf("✅ Clock-out %s split across %d day(s), split %s", open.UserID, len(created)+1, plan.SplitID)
	return &Result{
		Record:      &open,
		Created:     created,
		RecordIDs:   append([]string{open.ID}, ids...),
		Reconciling: reconciling,
	}, nil
}
