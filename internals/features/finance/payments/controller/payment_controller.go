package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"garderie_backend/internals/features/finance/payments/dto"
	"garderie_backend/internals/features/finance/payments/model"
	"garderie_backend/internals/features/finance/payments/service"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

type PaymentController struct {
	Service *service.Service
}

func NewPaymentController(svc *service.Service) *PaymentController {
	return &PaymentController{Service: svc}
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid payment id")
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

// POST /api/payments
func (ctl *PaymentController) Create(c *fiber.Ctx) error {
	actor, err := helperAuth.GetActor(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	resp, err := ctl.Service.Create(c.UserContext(), actor, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonCreated(c, "payment recorded", resp)
}

// GET /api/payments?start_date=&end_date=&type=&status=&child_id=&page=&limit=
func (ctl *PaymentController) List(c *fiber.Ctx) error {
	start, err := optionalDate(c, "start_date")
	if err != nil {
		return helper.FromAppError(c, err)
	}
	end, err := optionalDate(c, "end_date")
	if err != nil {
		return helper.FromAppError(c, err)
	}
	q := service.ListQuery{
		StartDate: start,
		EndDate:   end,
		Type:      model.PaymentType(strings.TrimSpace(c.Query("type"))),
		Status:    model.PaymentStatus(strings.TrimSpace(c.Query("status"))),
	}
	if raw := strings.TrimSpace(c.Query("child_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid child_id")
		}
		q.ChildID = &id
	}
	paging := helper.ResolvePaging(c, service.DefaultListLimit, service.MaxListLimit)
	q.Page, q.Limit = paging.Page, paging.Limit

	res, err := ctl.Service.List(c.UserContext(), q)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonList(c, "ok", res.Items, &res.Pagination)
}

// GET /api/payments/daily-report?date=
func (ctl *PaymentController) DailyReport(c *fiber.Ctx) error {
	date, err := dbtime.ParseDateOr(c.Query("date"), time.Time{})
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	report, err := ctl.Service.DailyReport(c.UserContext(), date)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.JsonOK(c, "ok", report)
}

// GET /api/payments/:id
func (ctl *PaymentController) Get(c *fiber.Ctx) error {
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

// GET /api/payments/:id/receipt
func (ctl *PaymentController) Receipt(c *fiber.Ctx) error {
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
