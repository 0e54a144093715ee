package timesheet

import (
	"bytes"
	"context"
	"testing"
	"time"

	"staffclock/src/models"
	"staffclock/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var myt = time.FixedZone("MYT", 8*60*60)

func clockAt(date string, hour, minute int) *time.Time {
	d, _ := time.ParseInLocation(models.DateLayout, date, myt)
	t := d.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
	return &t
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{Start: "2024-03-01", End: "2024-03-31"}.Validate())
	assert.NoError(t, Range{Start: "2024-03-01", End: "2024-03-01"}.Validate())
	assert.ErrorIs(t, Range{Start: "2024-03-31", End: "2024-03-01"}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Range{Start: "2024-3-1", End: "2024-03-01"}.Validate(), ErrInvalidRange)
	assert.ErrorIs(t, Range{End: "2024-03-01"}.Validate(), ErrInvalidRange)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "attendance_March_2024.xlsx", FileName(Range{Start: "2024-03-01", End: "2024-03-31"}))
	assert.Equal(t, "attendance_Mar_2024_to_Apr_2024.xlsx", FileName(Range{Start: "2024-03-15", End: "2024-04-14"}))
	assert.Equal(t, "attendance_Dec_2023_to_Jan_2024.xlsx", FileName(Range{Start: "2023-12-20", End: "2024-01-05"}))
}

func TestListSortsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAttendanceRepository()
	for _, rec := range []models.AttendanceRecord{
		{UserID: "a", Date: "2024-03-02", TimeIn: clockAt("2024-03-02", 9, 0)},
		{UserID: "b", Date: "2024-03-03", TimeIn: clockAt("2024-03-03", 8, 0)},
		{UserID: "c", Date: "2024-03-02", TimeIn: clockAt("2024-03-02", 14, 0)},
		{UserID: "d", Date: "2024-04-01", TimeIn: clockAt("2024-04-01", 9, 0)},
	} {
		rec := rec
		_, err := repo.Create(ctx, &rec)
		require.NoError(t, err)
	}

	got, err := NewService(repo, myt).List(ctx, Range{Start: "2024-03-01", End: "2024-03-31"})
	require.NoError(t, err)

	var users []string
	for _, r := range got {
		users = append(users, r.UserID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, users)
}

func TestExportWorkbook(t *testing.T) {
	svc := NewService(nil, myt)
	records := []models.AttendanceRecord{
		{
			DisplayName: "Aina",
			Date:        "2024-03-04",
			TimeIn:      clockAt("2024-03-04", 7, 0),
			TimeOut:     clockAt("2024-03-04", 16, 5),
			LocationIn:  &models.Location{City: "Kuala Lumpur", Area: "Ampang"},
			LocationOut: &models.Location{City: "Kuala Lumpur"},
		},
		{
			Email:  "hafiz@example.com",
			Date:   "2024-03-04",
			TimeIn: clockAt("2024-03-04", 9, 30),
		},
	}

	name, data, err := svc.Export(records, Range{Start: "2024-03-01", End: "2024-03-31"})
	require.NoError(t, err)
	assert.Equal(t, "attendance_March_2024.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Staff", "In", "Out", "Location In", "Location Out"}, rows[0])
	assert.Equal(t, []string{"2024-03-04", "Aina", "07:00", "16:05", "Kuala Lumpur, Ampang", "Kuala Lumpur"}, rows[1])
	assert.Equal(t, []string{"2024-03-04", "hafiz@example.com", "09:30", "-", "-", "-"}, rows[2])

	style, err := f.GetCellStyle(SheetName, "F1")
	require.NoError(t, err)
	assert.NotZero(t, style)
	width, err := f.GetColWidth(SheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, 28.0, width)
}

func TestExportRejectsBadRange(t *testing.T) {
	_, _, err := NewService(nil, myt).Export(nil, Range{Start: "2024-04-01", End: "2024-03-01"})
	assert.ErrorIs(t, err, ErrInvalidRange)
}
