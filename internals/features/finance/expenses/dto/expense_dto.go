package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"garderie_backend/internals/features/finance/expenses/model"
)

/* =========================================================
   Requests
   ========================================================= */

type CreateExpenseRequest struct {
	Title       string  `json:"title" validate:"omitempty,oneof=electricity water wifi gas other"`
	Description string  `json:"description" validate:"required,max=2000"`
	Amount      *int64  `json:"amount" validate:"required,gte=0"`
	Date        *string `json:"date"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *CreateExpenseRequest) Normalize() {
	r.Title = strings.ToLower(strings.TrimSpace(r.Title))
	if r.Title == "" {
		r.Title = string(model.TitleOther)
	}
	r.Description = strings.TrimSpace(r.Description)
	r.Date = trimPtr(r.Date)
	r.Notes = trimPtr(r.Notes)
}

// UpdateExpenseRequest: status and notes are reviewer fields.
type UpdateExpenseRequest struct {
	Title       *string `json:"title" validate:"omitempty,oneof=electricity water wifi gas other"`
	Description *string `json:"description" validate:"omitempty,min=1,max=2000"`
	Amount      *int64  `json:"amount" validate:"omitempty,gte=0"`
	Date        *string `json:"date"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *UpdateExpenseRequest) Normalize() {
	if r.Title != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Title))
		r.Title = &v
	}
	if r.Description != nil {
		v := strings.TrimSpace(*r.Description)
		r.Description = &v
	}
	r.Date = trimPtr(r.Date)
	if r.Status != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Status))
		r.Status = &v
	}
	if r.Notes != nil {
		v := strings.TrimSpace(*r.Notes)
		r.Notes = &v
	}
}

func (r *UpdateExpenseRequest) TouchesReview() bool {
	return r.Status != nil || r.Notes != nil
}

func (r *UpdateExpenseRequest) TouchesContent() bool {
	return r.Title != nil || r.Description != nil || r.Amount != nil || r.Date != nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

/* =========================================================
   Responses
   ========================================================= */

type CreatorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role string    `json:"role"`
}

type ExpenseResponse struct {
	ID            uuid.UUID           `json:"id"`
	Title         model.ExpenseTitle  `json:"title"`
	TitleLabel    string              `json:"title_label"`
	Description   string              `json:"description"`
	Amount        int64               `json:"amount"`
	Date          time.Time           `json:"date"`
	ReceiptNumber string              `json:"receipt_number"`
	Status        model.ExpenseStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedBy     CreatorSummary      `json:"created_by"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func FromModel(m *model.ExpenseModel, creator CreatorSummary) ExpenseResponse {
	creator.ID = m.CreatedBy
	return ExpenseResponse{
		ID:            m.ID,
		Title:         m.Title,
		TitleLabel:    m.Title.Label(),
		Description:   m.Description,
		Amount:        m.Amount,
		Date:          m.Date,
		ReceiptNumber: m.ReceiptNumber,
		Status:        m.Status,
		Notes:         m.Notes,
		CreatedBy:     creator,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

type CategoryTotal struct {
	Title model.ExpenseTitle `json:"title"`
	Total int64              `json:"total"`
	Count int64              `json:"count"`
}

type StatusCount struct {
	Status model.ExpenseStatus `json:"status"`
	Count  int64               `json:"count"`
}

type DayTotal struct {
	Date   string `json:"date"`
	Amount int64  `json:"amount"`
	Count  int64  `json:"count"`
}

type ExpenseStats struct {
	TodayTotal         int64           `json:"today_total"`
	TodayCount         int64           `json:"today_count"`
	MonthlyTotal       int64           `json:"monthly_total"`
	MonthlyCount       int64           `json:"monthly_count"`
	ExpensesByCategory []CategoryTotal `json:"expenses_by_category"`
	ExpensesByStatus   []StatusCount   `json:"expenses_by_status"`
	ExpenseTrend       []DayTotal      `json:"expense_trend"`
}

type ReportPeriod struct {
	Period             string                       `json:"period"`
	TotalExpenses      int64                        `json:"total_expenses"`
	TotalCount         int64                        `json:"total_count"`
	ExpensesByCategory map[model.ExpenseTitle]int64 `json:"expenses_by_category"`
}
