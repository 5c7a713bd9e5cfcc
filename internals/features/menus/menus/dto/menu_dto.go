package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"garderie_backend/internals/features/menus/menus/model"
)

type CreateMenuRequest struct {
	WeekStartDate string            `json:"week_start_date" validate:"required"`
	Meals         model.WeeklyMeals `json:"meals"`
}

type UpdateMenuRequest struct {
	WeekStartDate *string            `json:"week_start_date"`
	Meals         *model.WeeklyMeals `json:"meals"`
	IsActive      *bool              `json:"is_active"`
}

// DuplicateMenuRequest copies an existing menu's meals into another week.
type DuplicateMenuRequest struct {
	WeekStartDate string `json:"week_start_date" validate:"required"`
}

// TrimMeals strips surrounding blanks from every dish.
func TrimMeals(w model.WeeklyMeals) model.WeeklyMeals {
	trim := func(m model.Meal) model.Meal {
		return model.Meal{
			Breakfast: strings.TrimSpace(m.Breakfast),
			Lunch:     strings.TrimSpace(m.Lunch),
			Snack:     strings.TrimSpace(m.Snack),
		}
	}
	return model.WeeklyMeals{
		Monday:    trim(w.Monday),
		Tuesday:   trim(w.Tuesday),
		Wednesday: trim(w.Wednesday),
		Thursday:  trim(w.Thursday),
		Friday:    trim(w.Friday),
		Saturday:  trim(w.Saturday),
	}
}

type CreatorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type MenuResponse struct {
	ID            uuid.UUID         `json:"id"`
	WeekStartDate time.Time         `json:"week_start_date"`
	WeekEndDate   time.Time         `json:"week_end_date"`
	Meals         model.WeeklyMeals `json:"meals"`
	CreatedBy     CreatorSummary    `json:"created_by"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func FromModel(m *model.MenuModel, creatorName string) MenuResponse {
	return MenuResponse{
		ID:            m.ID,
		WeekStartDate: m.WeekStartDate,
		WeekEndDate:   m.WeekEndDate,
		Meals:         m.Meals.Data(),
		CreatedBy:     CreatorSummary{ID: m.CreatedBy, Name: creatorName},
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
