package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Meal struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
}

// WeeklyMeals covers the opening days, Monday to Saturday.
type WeeklyMeals struct {
	Monday    Meal `json:"monday"`
	Tuesday   Meal `json:"tuesday"`
	Wednesday Meal `json:"wednesday"`
	Thursday  Meal `json:"thursday"`
	Friday    Meal `json:"friday"`
	Saturday  Meal `json:"saturday"`
}

type MenuModel struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	WeekStartDate time.Time                       `gorm:"not null;column:week_start_date;uniqueIndex:uq_menus_week_start" json:"week_start_date"`
	WeekEndDate   time.Time                       `gorm:"not null;column:week_end_date" json:"week_end_date"`
	Meals         datatypes.JSONType[WeeklyMeals] `gorm:"column:meals" json:"meals"`
	CreatedBy     uuid.UUID                       `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsActive      bool                            `gorm:"not null;column:is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (MenuModel) TableName() string { return "menus" }

func (m *MenuModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
