package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/features/children/children/dto"
	"garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/features/children/children/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
)

type ChildController struct {
	Service *service.Service
}

func NewChildController(db *gorm.DB, log *zap.Logger) *ChildController {
	return &ChildController{Service: service.New(db, log)}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid child id")
	}
	return id, nil
}

// GET /api/children?class=&payment_mode=&search=&page=&limit=
func (ctl *ChildController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, service.DefaultListLimit, service.MaxListLimit)
	res, err := ctl.Service.List(c.UserContext(), service.ListQuery{
		Class:           model.ChildClass(strings.TrimSpace(c.Query("class"))),
		PaymentMode:     model.PaymentMode(strings.TrimSpace(c.Query("payment_mode"))),
		Search:          c.Query("search"),
		IncludeInactive: c.QueryBool("include_inactive", false),
		Page:            paging.Page,
		Limit:           paging.Limit,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", res.Items, &res.Pagination)
}

// GET /api/children/:id
func (ctl *ChildController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// POST /api/children
func (ctl *ChildController) Create(c *fiber.Ctx) error {
	var req dto.CreateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Create(c.UserContext(), req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "child created", resp)
}

// PUT /api/children/:id
func (ctl *ChildController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateChildRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "child updated", resp)
}

// DELETE /api/children/:id
func (ctl *ChildController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := ctl.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "child deactivated", fiber.Map{"id": id})
}

// GET /api/children/:id/history
func (ctl *ChildController) History(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	h, err := ctl.Service.History(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", h)
}
