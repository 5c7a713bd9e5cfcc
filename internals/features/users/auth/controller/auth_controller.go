package controller

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/features/users/auth/dto"
	"garderie_backend/internals/features/users/auth/service"
	helper "garderie_backend/internals/helpers"
	helperAuth "garderie_backend/internals/helpers/auth"
)

type AuthController struct {
	Service *service.Service
}

func NewAuthController(svc *service.Service) *AuthController {
	return &AuthController{Service: svc}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ac.Service.Login(c.UserContext(), req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "login successful", resp)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp, err := ac.Service.Me(c.UserContext(), actor.ID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// PUT /api/auth/profile
func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ac.Service.UpdateProfile(c.UserContext(), actor.ID, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "profile updated", resp)
}

// PUT /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := ac.Service.ChangePassword(c.UserContext(), actor.ID, req); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "password changed", nil)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Service.Logout(c.UserContext(), helperAuth.GetRawToken(c)); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "logged out", nil)
}
