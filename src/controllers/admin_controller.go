package controllers

import (
	"errors"
	"fmt"

	"staffclock/src/models"
	"staffclock/src/services/timesheet"
	"staffclock/src/utils"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	timesheet *timesheet.Service
}

func NewAdminController(ts *timesheet.Service) *AdminController {
	return &AdminController{timesheet: ts}
}

func (ac *AdminController) load(c *fiber.Ctx) (timesheet.Range, []models.AttendanceRecord, error) {
	var q timesheet.Range
	if err := c.QueryParser(&q); err != nil {
		return q, nil, fmt.Errorf("%w: %v", timesheet.ErrInvalidRange, err)
	}
	records, err := ac.timesheet.List(c.UserContext(), q)
	return q, records, err
}

func (ac *AdminController) fail(c *fiber.Ctx, err error) error {
	if errors.Is(err, timesheet.ErrInvalidRange) {
		return utils.HandleError(c, fiber.StatusBadRequest, "start and end must be YYYY-MM-DD with start <= end")
	}
	return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to load attendance")
}

// ListAttendance godoc
// @Summary      Attendance in a date range
// @Description  All staff records between start and end (inclusive), newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        start query string true "YYYY-MM-DD"
// @Param        end   query string true "YYYY-MM-DD"
// @Success      200  {array}   models.AttendanceRecord
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /admin/attendance [get]
func (ac *AdminController) ListAttendance(c *fiber.Ctx) error {
	_, records, err := ac.load(c)
	if err != nil {
		return ac.fail(c, err)
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return c.JSON(records)
}

// ExportAttendance godoc
// @Summary      Export attendance as Excel
// @Tags         admin
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        start query string true "YYYY-MM-DD"
// @Param        end   query string true "YYYY-MM-DD"
// @Success      200  {file}    file
// @Failure      400  {object}  models.ErrorResponse
// @Router       /admin/attendance/export [get]
func (ac *AdminController) ExportAttendance(c *fiber.Ctx) error {
	q, records, err := ac.load(c)
	if err != nil {
		return ac.fail(c, err)
	}

	name, data, err := ac.timesheet.Export(records, q)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to build export")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}
