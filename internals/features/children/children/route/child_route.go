package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ctrl "garderie_backend/internals/features/children/children/controller"
)

func ChildrenRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := ctrl.NewChildController(db, log)

	grp := r.Group("/children")
	grp.Get("/", ctl.List)
	grp.Post("/", ctl.Create)
	grp.Get("/:id", ctl.Get)
	grp.Put("/:id", ctl.Update)
	grp.Delete("/:id", ctl.Delete)
	grp.Get("/:id/history", ctl.History)
}
