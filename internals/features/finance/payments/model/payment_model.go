package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Enums ===================== */

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodMobileMoney  PaymentMethod = "mobile_money"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodBankTransfer, MethodMobileMoney:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case MethodCash:
		return "Espèces"
	case MethodBankTransfer:
		return "Virement bancaire"
	case MethodMobileMoney:
		return "Mobile Money"
	}
	return string(m)
}

type PaymentType string

const (
	TypeDaily     PaymentType = "daily"
	TypeMonthly   PaymentType = "monthly"
	TypeQuarterly PaymentType = "quarterly"
)

func (t PaymentType) Valid() bool {
	switch t {
	case TypeDaily, TypeMonthly, TypeQuarterly:
		return true
	}
	return false
}

// RequiresPeriod: every non-daily payment covers a named period.
func (t PaymentType) RequiresPeriod() bool { return t != TypeDaily }

func (t PaymentType) Label() string {
	switch t {
	case TypeDaily:
		return "Journalier"
	case TypeMonthly:
		return "Mensuel"
	case TypeQuarterly:
		return "Trimestriel"
	}
	return string(t)
}

type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPending PaymentStatus = "pending"
	StatusOverdue PaymentStatus = "overdue"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	}
	return false
}

/* ===================== Model ===================== */

type PaymentModel struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	ChildID       uuid.UUID     `gorm:"type:uuid;not null;column:child_id;index:idx_payments_child" json:"child_id"`
	RecordedBy    uuid.UUID     `gorm:"type:uuid;not null;column:recorded_by" json:"recorded_by"`
	Amount        int64         `gorm:"not null;check:chk_payments_amount,amount >= 0;column:amount" json:"amount"`
	PaymentDate   time.Time     `gorm:"not null;column:payment_date;index:idx_payments_date" json:"payment_date"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(16);not null;column:payment_method" json:"payment_method"`
	Type          PaymentType   `gorm:"type:varchar(16);not null;column:type" json:"type"`
	Period        *string       `gorm:"type:varchar(64);column:period" json:"period,omitempty"`
	ReceiptNumber string        `gorm:"type:varchar(32);not null;column:receipt_number;uniqueIndex:uq_payments_receipt_number" json:"receipt_number"`
	Status        PaymentStatus `gorm:"type:varchar(16);not null;default:'paid';column:status;index:idx_payments_status" json:"status"`
	Notes         *string       `gorm:"type:text;column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PaymentModel) TableName() string { return "payments" }

func (m *PaymentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
