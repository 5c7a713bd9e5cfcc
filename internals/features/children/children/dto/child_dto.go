package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/helpers/dbtime"
)

/* =========================================================
   PatchField (tri-state): absent | null | value
   ========================================================= */

type PatchField[T any] struct {
	Present bool
	Value   *T
}

func (p *PatchField[T]) UnmarshalJSON(b []byte) error {
	p.Present = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

func (p PatchField[T]) Get() (*T, bool) { return p.Value, p.Present }

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
   Requests: CREATE
   ========================================================= */

type ParentInput struct {
	Name    string  `json:"name" validate:"required,max=120"`
	Phone   string  `json:"phone" validate:"required,max=32"`
	Email   *string `json:"email" validate:"omitempty,email,max=255"`
	Address *string `json:"address" validate:"omitempty,max=500"`
}

type CreateChildRequest struct {
	FirstName      string      `json:"first_name" validate:"required,max=80"`
	LastName       string      `json:"last_name" validate:"required,max=80"`
	DateOfBirth    string      `json:"date_of_birth" validate:"required"`
	Class          string      `json:"class" validate:"required,oneof=creche_garderie toute_petite_section petite_section grande_section"`
	PaymentMode    string      `json:"payment_mode" validate:"required,oneof=daily monthly quarterly"`
	Parent         ParentInput `json:"parent"`
	EnrollmentDate *string     `json:"enrollment_date"`
	Notes          *string     `json:"notes" validate:"omitempty,max=1000"`
}

func (r *CreateChildRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Class = strings.ToLower(strings.TrimSpace(r.Class))
	r.PaymentMode = strings.ToLower(strings.TrimSpace(r.PaymentMode))
	r.Parent.Name = strings.TrimSpace(r.Parent.Name)
	r.Parent.Phone = strings.TrimSpace(r.Parent.Phone)
	r.Parent.Email = trimPtr(r.Parent.Email)
	if r.Parent.Email != nil {
		e := strings.ToLower(*r.Parent.Email)
		r.Parent.Email = &e
	}
	r.Parent.Address = trimPtr(r.Parent.Address)
	r.Notes = trimPtr(r.Notes)
	r.EnrollmentDate = trimPtr(r.EnrollmentDate)
}

// ToModel parses the date fields (YYYY-MM-DD or RFC3339).
func (r *CreateChildRequest) ToModel(now time.Time) (*model.ChildModel, error) {
	dob, err := dbtime.ParseDate(r.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth: %w", err)
	}
	enrolled := now
	if r.EnrollmentDate != nil {
		if enrolled, err = dbtime.ParseDate(*r.EnrollmentDate); err != nil {
			return nil, fmt.Errorf("enrollment_date: %w", err)
		}
	}
	return &model.ChildModel{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		DateOfBirth:    dob,
		Class:          model.ChildClass(r.Class),
		PaymentMode:    model.PaymentMode(r.PaymentMode),
		ParentName:     r.Parent.Name,
		ParentPhone:    r.Parent.Phone,
		ParentEmail:    r.Parent.Email,
		ParentAddress:  r.Parent.Address,
		IsActive:       true,
		EnrollmentDate: enrolled,
		Notes:          r.Notes,
	}, nil
}

/* =========================================================
   Requests: UPDATE (partial)
   ========================================================= */

type PatchParent struct {
	Name    PatchField[string] `json:"name"`
	Phone   PatchField[string] `json:"phone"`
	Email   PatchField[string] `json:"email"`
	Address PatchField[string] `json:"address"`
}

type UpdateChildRequest struct {
	FirstName      PatchField[string]    `json:"first_name"`
	LastName       PatchField[string]    `json:"last_name"`
	DateOfBirth    PatchField[string]    `json:"date_of_birth"`
	Class          PatchField[string]    `json:"class"`
	PaymentMode    PatchField[string]    `json:"payment_mode"`
	Parent         *PatchParent          `json:"parent"`
	EnrollmentDate PatchField[string]    `json:"enrollment_date"`
	Notes          PatchField[string]    `json:"notes"`
	IsActive       PatchField[bool]      `json:"is_active"`
}

/* =========================================================
   Responses
   ========================================================= */

type ParentResponse struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

type ChildResponse struct {
	ID             uuid.UUID         `json:"id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	FullName       string            `json:"full_name"`
	DateOfBirth    time.Time         `json:"date_of_birth"`
	Age            int               `json:"age"`
	Class          model.ChildClass  `json:"class"`
	ClassLabel     string            `json:"class_label"`
	PaymentMode    model.PaymentMode `json:"payment_mode"`
	Parent         ParentResponse    `json:"parent"`
	IsActive       bool              `json:"is_active"`
	EnrollmentDate time.Time         `json:"enrollment_date"`
	Notes          *string           `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

func FromModel(m *model.ChildModel, now time.Time) ChildResponse {
	return ChildResponse{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		FullName:    m.FullName(),
		DateOfBirth: m.DateOfBirth,
		Age:         m.Age(now),
		Class:       m.Class,
		ClassLabel:  m.Class.Label(),
		PaymentMode: m.PaymentMode,
		Parent: ParentResponse{
			Name:    m.ParentName,
			Phone:   m.ParentPhone,
			Email:   m.ParentEmail,
			Address: m.ParentAddress,
		},
		IsActive:       m.IsActive,
		EnrollmentDate: m.EnrollmentDate,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromModels(rows []model.ChildModel, now time.Time) []ChildResponse {
	out := make([]ChildResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i], now))
	}
	return out
}

type HistoryPayment struct {
	ID            uuid.UUID `json:"id"`
	Amount        int64     `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
	Type          string    `json:"type"`
	Period        *string   `json:"period,omitempty"`
	ReceiptNumber string    `json:"receipt_number"`
	Status        string    `json:"status"`
}

type HistoryAttendance struct {
	ID           uuid.UUID  `json:"id"`
	Date         time.Time  `json:"date"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
	Status       string     `json:"status"`
}

type ChildHistory struct {
	Child      ChildResponse       `json:"child"`
	Payments   []HistoryPayment    `json:"payments"`
	Attendance []HistoryAttendance `json:"attendance"`
}
