package route

import (
	"github.com/gofiber/fiber/v2"

	ctrl "garderie_backend/internals/features/finance/expenses/controller"
	"garderie_backend/internals/features/finance/expenses/service"
)

func ExpenseRoutes(r fiber.Router, svc *service.Service) {
	ctl := ctrl.NewExpenseController(svc)

	grp := r.Group("/expenses")
	grp.Get("/", ctl.List)
	grp.Post("/", ctl.Create)
	grp.Get("/stats", ctl.Stats)
	grp.Get("/report", ctl.Report)
	grp.Get("/:id", ctl.Get)
	grp.Put("/:id", ctl.Update)
	grp.Delete("/:id", ctl.Delete)
	grp.Get("/:id/receipt", ctl.Receipt)
}
