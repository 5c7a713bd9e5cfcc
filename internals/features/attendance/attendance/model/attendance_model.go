package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate:
		return true
	}
	return false
}

// AttendanceModel is one check-in of a child. At most one row exists per
// (child_id, date); date is the start of the local calendar day.
type AttendanceModel struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	ChildID      uuid.UUID        `gorm:"type:uuid;not null;column:child_id;uniqueIndex:uq_attendance_child_date,priority:1" json:"child_id"`
	RecordedBy   uuid.UUID        `gorm:"type:uuid;not null;column:recorded_by" json:"recorded_by"`
	Date         time.Time        `gorm:"not null;column:date;uniqueIndex:uq_attendance_child_date,priority:2;index:idx_attendance_date" json:"date"`
	CheckInTime  time.Time        `gorm:"not null;column:check_in_time" json:"check_in_time"`
	CheckOutTime *time.Time       `gorm:"column:check_out_time" json:"check_out_time,omitempty"`
	Status       AttendanceStatus `gorm:"type:varchar(16);not null;default:'present';column:status" json:"status"`
	Notes        *string          `gorm:"type:text;column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (AttendanceModel) TableName() string { return "attendances" }

func (m *AttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
