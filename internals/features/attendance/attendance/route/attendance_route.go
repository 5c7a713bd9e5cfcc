package route

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	ctrl "garderie_backend/internals/features/attendance/attendance/controller"
	authMiddleware "garderie_backend/internals/middlewares/auth"
)

// AttendanceRoutes mounts /attendance on an authenticated router.
func AttendanceRoutes(r fiber.Router, db *gorm.DB, log *zap.Logger) {
	ctl := ctrl.NewAttendanceController(db, log)

	grp := r.Group("/attendance")
	grp.Get("/", ctl.List)
	grp.Post("/", ctl.Mark)
	grp.Get("/stats", ctl.Stats)
	grp.Get("/children", ctl.Roster)

	manage := authMiddleware.RequireCapability(constants.CapManageAttendance, "modify attendance records")
	grp.Put("/:id", manage, ctl.Update)
	grp.Delete("/:id", manage, ctl.Delete)
}
