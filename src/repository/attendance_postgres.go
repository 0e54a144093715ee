package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staffclock/src/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		uid TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		photo_url TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		time_in TIMESTAMPTZ,
		time_out TIMESTAMPTZ,
		location_in JSONB,
		location_out JSONB,
		original_time_in TIMESTAMPTZ,
		original_time_out TIMESTAMPTZ,
		split_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS attendance_user_date ON attendance (user_id, date DESC)`,
	`CREATE INDEX IF NOT EXISTS attendance_date ON attendance (date DESC)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS attendance_one_open ON attendance (user_id) WHERE time_out IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS attendance_split_date ON attendance (split_id, date) WHERE split_id IS NOT NULL`,
}

// MigratePostgres สร้างตารางถ้ายังไม่มี
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, q := range postgresSchema {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("error creating tables: %w", err)
		}
	}
	return nil
}

const attendanceColumns = `id, user_id, name, email, date, time_in, time_out, location_in, location_out,
	original_time_in, original_time_out, COALESCE(split_id, ''), created_at`

// PostgresAttendanceRepository เก็บ AttendanceRecord ใน PostgreSQL (pgx pool)
type PostgresAttendanceRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAttendanceRepository(pool *pgxpool.Pool) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{pool: pool}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendance(row rowScanner) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.DisplayName,
		&rec.Email,
		&rec.Date,
		&rec.TimeIn,
		&rec.TimeOut,
		&rec.LocationIn,
		&rec.LocationOut,
		&rec.OriginalTimeIn,
		&rec.OriginalTimeOut,
		&rec.SplitID,
		&rec.CreatedAt,
	)
	return rec, err
}

func (r *PostgresAttendanceRepository) query(ctx context.Context, where string, args ...any) ([]models.AttendanceRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresAttendanceRepository) queryOne(ctx context.Context, where string, args ...any) (*models.AttendanceRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE `+where, args...)
	rec, err := scanAttendance(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	return &rec, nil
}

func (r *PostgresAttendanceRepository) FindByUserAndDate(ctx context.Context, userID, date string) ([]models.AttendanceRecord, error) {
	return r.query(ctx, `user_id = $1 AND date = $2`, userID, date)
}

func (r *PostgresAttendanceRepository) FindByUser(ctx context.Context, userID string) ([]models.AttendanceRecord, error) {
	return r.query(ctx, `user_id = $1`, userID)
}

func (r *PostgresAttendanceRepository) FindByDateRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error) {
	return r.query(ctx, `date >= $1 AND date <= $2`, start, end)
}

func (r *PostgresAttendanceRepository) FindOpenSession(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	return r.queryOne(ctx, `user_id = $1 AND time_out IS NULL ORDER BY time_in DESC NULLS LAST LIMIT 1`, userID)
}

func (r *PostgresAttendanceRepository) FindLatestClosed(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	return r.queryOne(ctx, `user_id = $1 AND time_out IS NOT NULL ORDER BY time_out DESC LIMIT 1`, userID)
}

// querier ใช้ได้ทั้ง *pgxpool.Pool และ pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertAttendance(ctx context.Context, q querier, rec *models.AttendanceRecord, onConflict string) (string, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	var splitID *string
	if rec.SplitID != "" {
		splitID = &rec.SplitID
	}
	sql := `INSERT INTO attendance (id, user_id, name, email, date, time_in, time_out, location_in, location_out,
			original_time_in, original_time_out, split_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13) ` + onConflict + ` RETURNING id`
	args := []any{
		uuid.NewString(), rec.UserID, rec.DisplayName, rec.Email, rec.Date,
		rec.TimeIn, rec.TimeOut, rec.LocationIn, rec.LocationOut,
		rec.OriginalTimeIn, rec.OriginalTimeOut, splitID, rec.CreatedAt,
	}
	var id string
	err := q.QueryRow(ctx, sql, args...).Scan(&id)
	return id, err
}

func (r *PostgresAttendanceRepository) Create(ctx context.Context, rec *models.AttendanceRecord) (string, error) {
	id, err := insertAttendance(ctx, r.pool, rec, "")
	if err != nil {
		return "", fmt.Errorf("failed to insert attendance: %w", err)
	}
	rec.ID = id
	return id, nil
}

func updateStatement(id string, fields models.RecordUpdate) (string, []any) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if fields.TimeOut != nil {
		add("time_out", *fields.TimeOut)
	}
	if fields.LocationOut != nil {
		add("location_out", fields.LocationOut)
	}
	if fields.OriginalTimeOut != nil {
		add("original_time_out", *fields.OriginalTimeOut)
	}
	if fields.SplitID != "" {
		add("split_id", fields.SplitID)
	}
	args = append(args, id)
	return fmt.Sprintf(`UPDATE attendance SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)), args
}

func (r *PostgresAttendanceRepository) Update(ctx context.Context, id string, fields models.RecordUpdate) error {
	sql, args := updateStatement(id, fields)
	cmd, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplySplit ทำทั้งการปิด record เดิมและ insert record ต่อเนื่องใน transaction เดียว
func (r *PostgresAttendanceRepository) ApplySplit(ctx context.Context, plan models.SplitPlan) ([]string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin split: %w", err)
	}
	defer tx.Rollback(ctx)

	upd := plan.Close
	upd.SplitID = plan.SplitID
	sql, args := updateStatement(plan.CloseID, upd)
	cmd, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to close split record: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	ids := make([]string, 0, len(plan.Continuations))
	for _, c := range plan.Continuations {
		c.SplitID = plan.SplitID
		// upsert no-op เพื่อให้ RETURNING คืน id เดิมตอน retry
		id, err := insertAttendance(ctx, tx, &c,
			`ON CONFLICT (split_id, date) WHERE split_id IS NOT NULL DO UPDATE SET split_id = EXCLUDED.split_id`)
		if err != nil {
			return nil, fmt.Errorf("failed to insert continuation %s: %w", c.Date, err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit split: %w", err)
	}
	return ids, nil
}
