package auth

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/constants"
	helper "garderie_backend/internals/helpers"
	helperAuth "garderie_backend/internals/helpers/auth"
)

// RoleMiddlewareWithCustomError allows only the listed roles.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helperAuth.GetActor(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		for _, allowed := range allowedRoles {
			if actor.Role == allowed {
				return c.Next()
			}
		}
		if customForbiddenMessage == "" {
			customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
		}
		return helper.JsonError(c, fiber.StatusForbidden, customForbiddenMessage)
	}
}

func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}

// RequireCapability checks the actor's role grants capability.
func RequireCapability(capability constants.Capability, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := helperAuth.GetActor(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if !actor.Can(capability) {
			return helper.JsonError(c, fiber.StatusForbidden, constants.CapabilityError(action))
		}
		return c.Next()
	}
}
