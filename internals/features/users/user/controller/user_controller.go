package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"garderie_backend/internals/features/users/user/dto"
	"garderie_backend/internals/features/users/user/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
)

type UserController struct {
	Service *service.Service
}

func NewUserController(svc *service.Service) *UserController {
	return &UserController{Service: svc}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid user id")
	}
	return id, nil
}

// GET /api/users?role=&search=&page=&limit=
func (uc *UserController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, service.DefaultListLimit, service.MaxListLimit)
	res, err := uc.Service.List(c.UserContext(), service.ListQuery{
		Role:   c.Query("role"),
		Search: c.Query("search"),
		Page:   paging.Page,
		Limit:  paging.Limit,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", res.Items, &res.Pagination)
}

// GET /api/users/:id
func (uc *UserController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp, err := uc.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// POST /api/users
func (uc *UserController) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := uc.Service.Create(c.UserContext(), req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "user created", resp)
}

// PUT /api/users/:id
func (uc *UserController) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := uc.Service.Update(c.UserContext(), id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "user updated", resp)
}

// DELETE /api/users/:id
func (uc *UserController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := uc.Service.Delete(c.UserContext(), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "user deleted", fiber.Map{"id": id})
}

// PUT /api/users/:id/reset-password
func (uc *UserController) ResetPassword(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := uc.Service.ResetPassword(c.UserContext(), id, req); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "password reset", nil)
}
