package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/features/attendance/attendance/dto"
	"garderie_backend/internals/features/attendance/attendance/service"
	childModel "garderie_backend/internals/features/children/children/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

type AttendanceController struct {
	Service *service.Service
}

func NewAttendanceController(db *gorm.DB, log *zap.Logger) *AttendanceController {
	return &AttendanceController{Service: service.New(db, log)}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid id")
	}
	return id, nil
}

func queryDate(c *fiber.Ctx) (time.Time, error) {
	d, err := dbtime.ParseDateOr(c.Query("date"), time.Time{})
	if err != nil {
		return time.Time{}, apperr.Validation(err.Error())
	}
	return d, nil
}

// POST /api/attendance
func (ctl *AttendanceController) Mark(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Mark(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "attendance marked", resp)
}

// GET /api/attendance?date=&class=&page=&limit=
func (ctl *AttendanceController) List(c *fiber.Ctx) error {
	date, err := queryDate(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	paging := helper.ResolvePaging(c, service.DefaultListLimit, 200)
	res, err := ctl.Service.ListForDay(c.UserContext(), service.ListQuery{
		Date:  date,
		Class: childModel.ChildClass(strings.TrimSpace(c.Query("class"))),
		Page:  paging.Page,
		Limit: paging.Limit,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", res.Items, &res.Pagination)
}

// GET /api/attendance/children?date=
func (ctl *AttendanceController) Roster(c *fiber.Ctx) error {
	date, err := queryDate(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	roster, err := ctl.Service.RosterWithPresence(c.UserContext(), date)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", roster)
}

// GET /api/attendance/stats?date=
func (ctl *AttendanceController) Stats(c *fiber.Ctx) error {
	date, err := queryDate(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	stats, err := ctl.Service.Stats(c.UserContext(), date)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", stats)
}

// PUT /api/attendance/:id
func (ctl *AttendanceController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "attendance updated", resp)
}

// DELETE /api/attendance/:id
func (ctl *AttendanceController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := ctl.Service.Delete(c.UserContext(), actor, id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "attendance deleted", fiber.Map{"id": id})
}
