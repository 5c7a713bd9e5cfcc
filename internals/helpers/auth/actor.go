package helper

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/helpers/apperr"
)

// Locals keys set by the auth middleware
const (
	LocActor    = "actor"
	LocUserID   = "user_id"
	LocUserRole = "userRole"
	LocRawToken = "raw_token"
)

// Actor is the authenticated user resolved once per request.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == constants.RoleAdmin }

func (a Actor) Can(capability constants.Capability) bool {
	return constants.Can(a.Role, capability)
}

func SetActor(c *fiber.Ctx, a Actor) {
	c.Locals(LocActor, a)
	c.Locals(LocUserID, a.ID.String())
	c.Locals(LocUserRole, a.Role)
}

// GetActor returns the request's actor or an Unauthorized error.
func GetActor(c *fiber.Ctx) (Actor, error) {
	if a, ok := c.Locals(LocActor).(Actor); ok && a.ID != uuid.Nil {
		return a, nil
	}
	return Actor{}, apperr.Unauthorized("not authenticated")
}

func GetRawToken(c *fiber.Ctx) string {
	s, _ := c.Locals(LocRawToken).(string)
	return s
}
