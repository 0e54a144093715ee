package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staffclock/src/models"
	"staffclock/src/services/attendance"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

const SheetName = "Attendance"

var ErrInvalidRange = errors.New("invalid date range")

var validate = validator.New()

// Range ช่วงวันที่ (รวมทั้งสองฝั่ง) รูปแบบ YYYY-MM-DD
type Range struct {
	Start string `query:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" validate:"required,datetime=2006-01-02"`
}

func (r Range) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if r.Start > r.End {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

type Reader interface {
	FindByDateRange(ctx context.Context, start, end string) ([]models.AttendanceRecord, error)
}

type Service struct {
	repo Reader
	loc  *time.Location
}

func NewService(repo Reader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, loc: loc}
}

// List record ทั้งหมดในช่วง เรียง date ใหม่ก่อน
func (s *Service) List(ctx context.Context, r Range) ([]models.AttendanceRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	records, err := s.repo.FindByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, err
	}
	attendance.SortRecords(records)
	return records, nil
}

// Export สร้างไฟล์ xlsx คืนชื่อไฟล์กับเนื้อไฟล์
func (s *Service) Export(records []models.AttendanceRecord, r Range) (string, []byte, error) {
	if err := r.Validate(); err != nil {
		return "", nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return "", nil, err
	}

	header := []any{"Date", "Staff", "In", "Out", "Location In", "Location Out"}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return "", nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", style); err != nil {
		return "", nil, err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, err
		}
		row := []any{
			rec.Date,
			staffName(rec),
			s.clock(rec.TimeIn),
			s.clock(rec.TimeOut),
			place(rec.LocationIn),
			place(rec.LocationOut),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return "", nil, err
		}
	}
	if err := f.SetColWidth(SheetName, "A", "B", 18); err != nil {
		return "", nil, err
	}
	if err := f.SetColWidth(SheetName, "E", "F", 28); err != nil {
		return "", nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return FileName(r), buf.Bytes(), nil
}

// FileName attendance_March_2024.xlsx หรือ attendance_Mar_2024_to_Apr_2024.xlsx
func FileName(r Range) string {
	start, errS := time.Parse(models.DateLayout, r.Start)
	end, errE := time.Parse(models.DateLayout, r.End)
	if errS != nil || errE != nil {
		return "attendance.xlsx"
	}
	if start.Year() == end.Year() && start.Month() == end.Month() {
		return fmt.Sprintf("attendance_%s_%d.xlsx", start.Month(), start.Year())
	}
	return fmt.Sprintf("attendance_%s_%d_to_%s_%d.xlsx",
		start.Format("Jan"), start.Year(), end.Format("Jan"), end.Year())
}

func (s *Service) clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(s.loc).Format("15:04")
}

func staffName(rec models.AttendanceRecord) string {
	if rec.DisplayName != "" {
		return rec.DisplayName
	}
	return rec.Email
}

func place(l *models.Location) string {
	switch {
	case l == nil || l.City == "":
		return "-"
	case l.Area == "":
		return l.City
	default:
		return l.City + ", " + l.Area
	}
}
