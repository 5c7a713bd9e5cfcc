package route

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/constants"
	"garderie_backend/internals/features/menus/menus/controller"
	"garderie_backend/internals/features/menus/menus/service"
	authMiddleware "garderie_backend/internals/middlewares/auth"
)

func MenuRoutes(r fiber.Router, svc *service.Service) {
	mc := controller.NewMenuController(svc)
	canManage := authMiddleware.RequireCapability(constants.CapManageMenus, "manage menus")

	grp := r.Group("/menus")
	grp.Get("/", mc.List)
	grp.Get("/current", mc.Current)
	grp.Get("/:id", mc.Get)
	grp.Post("/", canManage, mc.Create)
	grp.Put("/:id", canManage, mc.Update)
	grp.Delete("/:id", canManage, mc.Delete)
	grp.Post("/:id/duplicate", canManage, mc.Duplicate)
}
