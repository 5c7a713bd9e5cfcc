package model

import "time"

// ReceiptCounter holds the last issued ordinal for one receipt kind.
type ReceiptCounter struct {
	Kind      string    `gorm:"type:varchar(16);primaryKey;column:kind" json:"kind"`
	Value     int64     `gorm:"not null;default:0;column:value" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ReceiptCounter) TableName() string { return "receipt_counters" }
