package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	childModel "garderie_backend/internals/features/children/children/model"
	"garderie_backend/internals/features/attendance/attendance/model"
)

/* =========================================================
   Requests
   ========================================================= */

type MarkAttendanceRequest struct {
	ChildID string  `json:"child_id" validate:"required,uuid"`
	Notes   *string `json:"notes" validate:"omitempty,max=500"`
}

func (r *MarkAttendanceRequest) Normalize() {
	r.ChildID = strings.TrimSpace(r.ChildID)
	r.Notes = trimPtr(r.Notes)
}

type UpdateAttendanceRequest struct {
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        *string    `json:"notes" validate:"omitempty,max=500"`
	Status       *string    `json:"status" validate:"omitempty,oneof=present absent late"`
}

func (r *UpdateAttendanceRequest) Normalize() {
	r.Notes = trimPtr(r.Notes)
	if r.Status != nil {
		s := strings.ToLower(strings.TrimSpace(*r.Status))
		r.Status = &s
	}
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

type ParentSummary struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type ChildSummary struct {
	ID        uuid.UUID             `json:"id"`
	FirstName string                `json:"first_name"`
	LastName  string                `json:"last_name"`
	Class     childModel.ChildClass `json:"class"`
	Parent    ParentSummary         `json:"parent"`
}

type RecorderSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type AttendanceResponse struct {
	ID           uuid.UUID              `json:"id"`
	Child        *ChildSummary          `json:"child,omitempty"`
	RecordedBy   RecorderSummary        `json:"recorded_by"`
	Date         time.Time              `json:"date"`
	CheckInTime  time.Time              `json:"check_in_time"`
	CheckOutTime *time.Time             `json:"check_out_time,omitempty"`
	Status       model.AttendanceStatus `json:"status"`
	Notes        *string                `json:"notes,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// FromModel joins a mark with its child and recorder (either may be nil).
func FromModel(m *model.AttendanceModel, child *childModel.ChildModel, recorderName string) AttendanceResponse {
	out := AttendanceResponse{
		ID:           m.ID,
		RecordedBy:   RecorderSummary{ID: m.RecordedBy, Name: recorderName},
		Date:         m.Date,
		CheckInTime:  m.CheckInTime,
		CheckOutTime: m.CheckOutTime,
		Status:       m.Status,
		Notes:        m.Notes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if child != nil {
		out.Child = &ChildSummary{
			ID:        child.ID,
			FirstName: child.FirstName,
			LastName:  child.LastName,
			Class:     child.Class,
			Parent: ParentSummary{
				Name:  child.ParentName,
				Phone: child.ParentPhone,
				Email: child.ParentEmail,
			},
		}
	}
	return out
}

type RosterEntry struct {
	ID        uuid.UUID             `json:"id"`
	FirstName string                `json:"first_name"`
	LastName  string                `json:"last_name"`
	Class     childModel.ChildClass `json:"class"`
	IsPresent bool                  `json:"is_present"`
}

type ClassCount struct {
	Class childModel.ChildClass `json:"class"`
	Count int64                 `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

type AttendanceStats struct {
	Date              string       `json:"date"`
	TotalPresent      int64        `json:"total_present"`
	TotalChildren     int64        `json:"total_children"`
	AbsentCount       int64        `json:"absent_count"`
	AttendanceRate    float64      `json:"attendance_rate"`
	AttendanceByClass []ClassCount `json:"attendance_by_class"`
	WeeklyStats       []DayCount   `json:"weekly_stats"`
}
