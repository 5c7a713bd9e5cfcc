package route

import (
	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/features/dashboard/dashboard/controller"
	"garderie_backend/internals/features/dashboard/dashboard/service"
)

func DashboardRoutes(r fiber.Router, svc *service.Service) {
	dc := controller.NewDashboardController(svc)

	grp := r.Group("/dashboard")
	grp.Get("/stats", dc.Stats)
	grp.Get("/financial-report", dc.FinancialReport)
}
