package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"garderie_backend/internals/features/menus/menus/dto"
	"garderie_backend/internals/features/menus/menus/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

type MenuController struct {
	Service *service.Service
}

func NewMenuController(svc *service.Service) *MenuController {
	return &MenuController{Service: svc}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid menu id")
	}
	return id, nil
}

func queryDate(c *fiber.Ctx, keys ...string) (*time.Time, error) {
	for _, k := range keys {
		raw := strings.TrimSpace(c.Query(k))
		if raw == "" {
			continue
		}
		d, err := dbtime.ParseDate(raw)
		if err != nil {
			return nil, apperr.Validation(k + ": " + err.Error())
		}
		return &d, nil
	}
	return nil, nil
}

// GET /api/menus?start_date=&end_date=
func (mc *MenuController) List(c *fiber.Ctx) error {
	start, err := queryDate(c, "start_date", "startDate")
	if err != nil {
		return helper.FromAppError(c, err)
	}
	end, err := queryDate(c, "end_date", "endDate")
	if err != nil {
		return helper.FromAppError(c, err)
	}
	list, err := mc.Service.List(c.UserContext(), service.ListQuery{StartDate: start, EndDate: end})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", list)
}

// GET /api/menus/current
func (mc *MenuController) Current(c *fiber.Ctx) error {
	resp, err := mc.Service.Current(c.UserContext())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// GET /api/menus/:id
func (mc *MenuController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp, err := mc.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// POST /api/menus
func (mc *MenuController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.CreateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := mc.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "menu created", resp)
}

// PUT /api/menus/:id
func (mc *MenuController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := mc.Service.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "menu updated", resp)
}

// DELETE /api/menus/:id
func (mc *MenuController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := mc.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "menu deleted", fiber.Map{"id": id})
}

// POST /api/menus/:id/duplicate
func (mc *MenuController) Duplicate(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.DuplicateMenuRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := mc.Service.Duplicate(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "menu duplicated", resp)
}
