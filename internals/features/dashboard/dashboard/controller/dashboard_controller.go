package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"garderie_backend/internals/features/dashboard/dashboard/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/helpers/dbtime"
)

type DashboardController struct {
	Service *service.Service
}

func NewDashboardController(svc *service.Service) *DashboardController {
	return &DashboardController{Service: svc}
}

// GET /api/dashboard/stats
func (dc *DashboardController) Stats(c *fiber.Ctx) error {
	stats, err := dc.Service.Stats(c.UserContext())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", stats)
}

// GET /api/dashboard/financial-report?start_date=&end_date=&group_by=
func (dc *DashboardController) FinancialReport(c *fiber.Ctx) error {
	var (
		q   service.FinancialQuery
		err error
	)
	if q.StartDate, err = dateParam(c, "start_date", "startDate"); err != nil {
		return helper.FromAppError(c, err)
	}
	if q.EndDate, err = dateParam(c, "end_date", "endDate"); err != nil {
		return helper.FromAppError(c, err)
	}
	q.GroupBy = dbtime.GroupBy(strings.ToLower(strings.TrimSpace(c.Query("group_by", c.Query("groupBy")))))

	report, err := dc.Service.FinancialReport(c.UserContext(), q)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", report)
}

func dateParam(c *fiber.Ctx, key, alias string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key, c.Query(alias)))
	if raw == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return nil, apperr.Validation(key + ": " + err.Error())
	}
	return &d, nil
}
