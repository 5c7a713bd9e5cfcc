package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums ===================== */

type ChildClass string

const (
	ClassCrecheGarderie     ChildClass = "creche_garderie"
	ClassToutePetiteSection ChildClass = "toute_petite_section"
	ClassPetiteSection      ChildClass = "petite_section"
	ClassGrandeSection      ChildClass = "grande_section"
)

var AllClasses = []ChildClass{ClassCrecheGarderie, ClassToutePetiteSection, ClassPetiteSection, ClassGrandeSection}

func (c ChildClass) Valid() bool {
	for _, v := range AllClasses {
		if c == v {
			return true
		}
	}
	return false
}

// Label is the display name used on receipts and reports.
func (c ChildClass) Label() string {
	switch c {
	case ClassCrecheGarderie:
		return "Crèche/Garderie"
	case ClassToutePetiteSection:
		return "Toute Petite Section"
	case ClassPetiteSection:
		return "Petite Section"
	case ClassGrandeSection:
		return "Grande Section"
	}
	return string(c)
}

type PaymentMode string

const (
	PaymentModeDaily     PaymentMode = "daily"
	PaymentModeMonthly   PaymentMode = "monthly"
	PaymentModeQuarterly PaymentMode = "quarterly"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeDaily, PaymentModeMonthly, PaymentModeQuarterly:
		return true
	}
	return false
}

/* ===================== Model ===================== */

type ChildModel struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	FirstName   string      `gorm:"type:varchar(80);not null;column:first_name" json:"first_name"`
	LastName    string      `gorm:"type:varchar(80);not null;column:last_name" json:"last_name"`
	DateOfBirth time.Time   `gorm:"not null;column:date_of_birth" json:"date_of_birth"`
	Class       ChildClass  `gorm:"type:varchar(32);not null;column:class;index:idx_children_active_class,priority:2" json:"class"`
	PaymentMode PaymentMode `gorm:"type:varchar(16);not null;column:payment_mode" json:"payment_mode"`

	// parent / guardian
	ParentName    string  `gorm:"type:varchar(120);not null;column:parent_name" json:"parent_name"`
	ParentPhone   string  `gorm:"type:varchar(32);not null;column:parent_phone" json:"parent_phone"`
	ParentEmail   *string `gorm:"type:varchar(255);column:parent_email" json:"parent_email,omitempty"`
	ParentAddress *string `gorm:"type:text;column:parent_address" json:"parent_address,omitempty"`

	IsActive       bool      `gorm:"not null;column:is_active;index:idx_children_active_class,priority:1" json:"is_active"`
	EnrollmentDate time.Time `gorm:"not null;column:enrollment_date" json:"enrollment_date"`
	Notes          *string   `gorm:"type:text;column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ChildModel) TableName() string { return "children" }

func (m *ChildModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *ChildModel) FullName() string { return m.FirstName + " " + m.LastName }

// Age in whole years at now; the birthday itself counts.
func (m *ChildModel) Age(now time.Time) int {
	dob := m.DateOfBirth.In(now.Location())
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
