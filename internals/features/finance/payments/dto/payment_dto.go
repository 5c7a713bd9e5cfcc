package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	childModel "garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Requests
   ========================================================= */

type CreatePaymentRequest struct {
	ChildID       string  `json:"child_id" validate:"required,uuid"`
	Amount        *int64  `json:"amount" validate:"required,gte=0"`
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash bank_transfer mobile_money"`
	Type          string  `json:"type" validate:"required,oneof=daily monthly quarterly"`
	Period        *string `json:"period" validate:"omitempty,max=64"`
	// PaymentDate defaults to now (YYYY-MM-DD or RFC3339).
	PaymentDate *string `json:"payment_date"`
	Status      *string `json:"status" validate:"omitempty,oneof=paid pending overdue"`
	Notes       *string `json:"notes" validate:"omitempty,max=1000"`
}

func (r *CreatePaymentRequest) Normalize() {
	r.ChildID = strings.TrimSpace(r.ChildID)
	r.PaymentMethod = strings.ToLower(strings.TrimSpace(r.PaymentMethod))
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Period = trimPtr(r.Period)
	r.PaymentDate = trimPtr(r.PaymentDate)
	r.Status = trimPtr(r.Status)
	r.Notes = trimPtr(r.Notes)
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

type ChildSummary struct {
	ID         uuid.UUID             `json:"id"`
	FirstName  string                `json:"first_name"`
	LastName   string                `json:"last_name"`
	Class      childModel.ChildClass `json:"class"`
	ParentName string                `json:"parent_name"`
}

type RecorderSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type PaymentResponse struct {
	ID            uuid.UUID           `json:"id"`
	Child         *ChildSummary       `json:"child,omitempty"`
	ChildID       uuid.UUID           `json:"child_id"`
	RecordedBy    RecorderSummary     `json:"recorded_by"`
	Amount        int64               `json:"amount"`
	PaymentDate   time.Time           `json:"payment_date"`
	PaymentMethod model.PaymentMethod `json:"payment_method"`
	Type          model.PaymentType   `json:"type"`
	Period        *string             `json:"period,omitempty"`
	ReceiptNumber string              `json:"receipt_number"`
	Status        model.PaymentStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

func FromModel(m *model.PaymentModel, child *childModel.ChildModel, recorderName string) PaymentResponse {
	out := PaymentResponse{
		ID:            m.ID,
		ChildID:       m.ChildID,
		RecordedBy:    RecorderSummary{ID: m.RecordedBy, Name: recorderName},
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		PaymentMethod: m.PaymentMethod,
		Type:          m.Type,
		Period:        m.Period,
		ReceiptNumber: m.ReceiptNumber,
		Status:        m.Status,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
	if child != nil {
		out.Child = &ChildSummary{
			ID:         child.ID,
			FirstName:  child.FirstName,
			LastName:   child.LastName,
			Class:      child.Class,
			ParentName: child.ParentName,
		}
	}
	return out
}

type MethodTotal struct {
	Method model.PaymentMethod `json:"method"`
	Total  int64               `json:"total"`
	Count  int64               `json:"count"`
}

type TypeTotal struct {
	Type  model.PaymentType `json:"type"`
	Total int64             `json:"total"`
	Count int64             `json:"count"`
}

type DailyReport struct {
	Date        string            `json:"date"`
	TotalAmount int64             `json:"total_amount"`
	Count       int64             `json:"count"`
	ByMethod    []MethodTotal     `json:"by_method"`
	ByType      []TypeTotal       `json:"by_type"`
	Payments    []PaymentResponse `json:"payments"`
}
