package route

import (
	"github.com/gofiber/fiber/v2"

	ctrl "garderie_backend/internals/features/finance/payments/controller"
	"garderie_backend/internals/features/finance/payments/service"
)

func PaymentRoutes(r fiber.Router, svc *service.Service) {
	ctl := ctrl.NewPaymentController(svc)

	grp := r.Group("/payments")
	grp.Get("/", ctl.List)
	grp.Post("/", ctl.Create)
	grp.Get("/daily-report", ctl.DailyReport)
	grp.Get("/:id", ctl.Get)
	grp.Get("/:id/receipt", ctl.Receipt)
}
