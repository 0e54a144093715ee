package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"staffclock/src/models"
	"staffclock/src/services/attendance"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

const defaultHistoryLimit = 7

// ClockRequest ตำแหน่ง GPS ตอนกดปุ่ม
type ClockRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

type AttendanceController struct {
	engine *attendance.Engine
	now    func() time.Time
}

func NewAttendanceController(engine *attendance.Engine, now func() time.Time) *AttendanceController {
	if now == nil {
		now = time.Now
	}
	return &AttendanceController{engine: engine, now: now}
}

// ClockIn godoc
// @Summary      Clock in
// @Description  Start an attendance session at the caller's location
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body ClockRequest true "GPS sample"
// @Success      200  {object}  attendance.Result
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /attendance/clock-in [post]
func (ac *AttendanceController) ClockIn(c *fiber.Ctx) error {
	return ac.clock(c, attendance.ClockIn)
}

// ClockOut godoc
// @Summary      Clock out
// @Description  Close the open session; sessions crossing midnight are split per day
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body ClockRequest true "GPS sample"
// @Success      200  {object}  attendance.Result
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /attendance/clock-out [post]
func (ac *AttendanceController) ClockOut(c *fiber.Ctx) error {
	return ac.clock(c, attendance.ClockOut)
}

func (ac *AttendanceController) clock(c *fiber.Ctx, action attendance.Action) error {
	var body ClockRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "lat and lng must be valid coordinates"})
	}

	res, err := ac.engine.Clock(c.UserContext(), action, identityFrom(c), ac.now(), attendance.GeoSample{Lat: *body.Lat, Lng: *body.Lng})
	if err != nil {
		var blocked *attendance.BlockedError
		if errors.As(err, &blocked) {
			resp := fiber.Map{"error": blocked.Decision.Reason, "code": blocked.Decision.Kind}
			if blocked.Decision.RemainingMinutes > 0 {
				resp["remainingMinutes"] = blocked.Decision.RemainingMinutes
			}
			return c.Status(fiber.StatusConflict).JSON(resp)
		}
		log.Printf("❌ %s failed for %s: %v", action, c.Locals("userId"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record attendance"})
	}
	return c.JSON(res)
}

// Today godoc
// @Summary      Today's status
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  attendance.SessionState
// @Failure      500  {object}  models.ErrorResponse
// @Router       /attendance/today [get]
func (ac *AttendanceController) Today(c *fiber.Ctx) error {
	state, err := ac.engine.State(c.UserContext(), userIDFrom(c), ac.now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attendance"})
	}
	return c.JSON(state)
}

// History godoc
// @Summary      Recent attendance
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "max records (default 7)"
// @Success      200  {array}   models.AttendanceRecord
// @Failure      400  {object}  models.ErrorResponse
// @Router       /attendance/history [get]
func (ac *AttendanceController) History(c *fiber.Ctx) error {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	records, err := ac.engine.History(c.UserContext(), userIDFrom(c), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attendance"})
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return c.JSON(records)
}

func userIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}

func identityFrom(c *fiber.Ctx) models.Identity {
	email, _ := c.Locals("email").(string)
	name, _ := c.Locals("name").(string)
	return models.Identity{UID: userIDFrom(c), Email: email, DisplayName: name}
}
