package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseTitle string

const (
	TitleElectricity ExpenseTitle = "electricity"
	TitleWater       ExpenseTitle = "water"
	TitleWifi        ExpenseTitle = "wifi"
	TitleGas         ExpenseTitle = "gas"
	TitleOther       ExpenseTitle = "other"
)

var AllTitles = []ExpenseTitle{TitleElectricity, TitleWater, TitleWifi, TitleGas, TitleOther}

func (t ExpenseTitle) Valid() bool {
	for _, v := range AllTitles {
		if t == v {
			return true
		}
	}
	return false
}

func (t ExpenseTitle) Label() string {
	switch t {
	case TitleElectricity:
		return "Électricité"
	case TitleWater:
		return "Eau"
	case TitleWifi:
		return "Wifi"
	case TitleGas:
		return "Gaz"
	}
	return "Autre"
}

type ExpenseStatus string

const (
	StatusPending  ExpenseStatus = "pending"
	StatusApproved ExpenseStatus = "approved"
	StatusRejected ExpenseStatus = "rejected"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type ExpenseModel struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	CreatedBy     uuid.UUID     `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	Title         ExpenseTitle  `gorm:"type:varchar(16);not null;default:'other';column:title" json:"title"`
	Description   string        `gorm:"type:text;not null;column:description" json:"description"`
	Amount        int64         `gorm:"not null;check:chk_expenses_amount,amount >= 0;column:amount" json:"amount"`
	Date          time.Time     `gorm:"not null;column:date;index:idx_expenses_date" json:"date"`
	ReceiptNumber string        `gorm:"type:varchar(32);not null;column:receipt_number;uniqueIndex:uq_expenses_receipt_number" json:"receipt_number"`
	Status        ExpenseStatus `gorm:"type:varchar(16);not null;default:'pending';column:status;index:idx_expenses_status" json:"status"`
	Notes         *string       `gorm:"type:text;column:notes" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ExpenseModel) TableName() string { return "expenses" }

func (m *ExpenseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
