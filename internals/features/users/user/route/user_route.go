package route

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/users/user/controller"
	"garderie_backend/internals/features/users/user/service"
	authMiddleware "garderie_backend/internals/middlewares/auth"
)

// UserAdminRoutes mounts account management for holders of manage_users.
func UserAdminRoutes(r fiber.Router, svc *service.Service) {
	uc := controller.NewUserController(svc)

	grp := r.Group("/users", authMiddleware.RequireCapability(constants.CapManageUsers, "manage users"))
	grp.Get("/", uc.List)
	grp.Post("/", uc.Create)
	grp.Get("/:id", uc.Get)
	grp.Put("/:id", uc.Update)
	grp.Delete("/:id", uc.Delete)
	grp.Put("/:id/reset-password", uc.ResetPassword)
}
