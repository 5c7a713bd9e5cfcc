package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"garderie_backend/internals/features/finance/expenses/dto"
	"garderie_backend/internals/features/finance/expenses/model"
	"garderie_backend/internals/features/finance/expenses/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

type ExpenseController struct {
	Service *service.Service
}

func NewExpenseController(svc *service.Service) *ExpenseController {
	return &ExpenseController{Service: svc}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid expense id")
	}
	return id, nil
}

func optionalDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return nil, apperr.Validation(key + ": " + err.Error())
	}
	return &d, nil
}

func dateRange(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	start, err := optionalDate(c, "start_date")
	if err != nil {
		return nil, nil, err
	}
	end, err := optionalDate(c, "end_date")
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// GET /api/expenses?start_date=&end_date=&title=&status=&page=&limit=
func (ctl *ExpenseController) List(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	paging := helper.ResolvePaging(c, service.DefaultListLimit, service.MaxListLimit)
	res, err := ctl.Service.List(c.UserContext(), service.ListQuery{
		StartDate: start,
		EndDate:   end,
		Title:     model.ExpenseTitle(strings.TrimSpace(c.Query("title"))),
		Status:    model.ExpenseStatus(strings.TrimSpace(c.Query("status"))),
		Page:      paging.Page,
		Limit:     paging.Limit,
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", res.Items, &res.Pagination)
}

// POST /api/expenses
func (ctl *ExpenseController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.CreateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "expense recorded", resp)
}

// GET /api/expenses/stats
func (ctl *ExpenseController) Stats(c *fiber.Ctx) error {
	stats, err := ctl.Service.Stats(c.UserContext())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", stats)
}

// GET /api/expenses/report?start_date=&end_date=&group_by=day|week|month
func (ctl *ExpenseController) Report(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	groupBy := c.Query("group_by", c.Query("groupBy"))
	report, err := ctl.Service.Report(c.UserContext(), service.ReportQuery{
		StartDate: start,
		EndDate:   end,
		GroupBy:   dbtime.GroupBy(strings.ToLower(strings.TrimSpace(groupBy))),
	})
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", report)
}

// GET /api/expenses/:id
func (ctl *ExpenseController) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	resp, err := ctl.Service.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", resp)
}

// PUT /api/expenses/:id
func (ctl *ExpenseController) Update(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.UpdateExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonUpdated(c, "expense updated", resp)
}

// DELETE /api/expenses/:id
func (ctl *ExpenseController) Delete(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	if err := ctl.Service.Delete(c.UserContext(), actor, id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonDeleted(c, "expense deleted", fiber.Map{"id": id})
}

// GET /api/expenses/:id/receipt
func (ctl *ExpenseController) Receipt(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	pdf, name, err := ctl.Service.Receipt(c.UserContext(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(pdf)
}
