package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"garderie_backend/internals/features/menus/menus/dto"
	"garderie_backend/internals/features/menus/menus/model"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	helperAuth "garderie_backend/internals/helpers/auth"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgNotFound      = "menu not found"
	MsgNoCurrentMenu = "no menu for the current week"
	MsgWeekTaken     = "a menu already exists for this week"

	// Monday to Saturday
	openDays = 6
)

type Service struct {
	DB        *gorm.DB
	Validator *validator.Validate
	Log       *zap.Logger
	Now       func() time.Time
}

func New(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		DB:        db,
		Validator: helper.NewValidator(),
		Log:       log.Named("menus"),
		Now:       dbtime.Now,
	}
}

// WeekOf returns the Monday and Saturday (start of day) of raw's week.
func WeekOf(raw string) (time.Time, time.Time, error) {
	d, err := dbtime.ParseDate(raw)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("week_start_date: " + err.Error())
	}
	monday, _ := dbtime.WeekBounds(d)
	return monday, monday.AddDate(0, 0, openDays-1), nil
}

type ListQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// List returns active menus, latest week first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]dto.MenuResponse, error) {
	tx := s.DB.WithContext(ctx).Where("is_active = ?", true)
	if q.StartDate != nil {
		tx = tx.Where("week_start_date >= ?", dbtime.StartOfDay(*q.StartDate))
	}
	if q.EndDate != nil {
		tx = tx.Where("week_end_date <= ?", dbtime.StartOfDay(*q.EndDate))
	}
	var rows []model.MenuModel
	if err := tx.Order("week_start_date DESC").Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list menus", err)
	}
	return s.hydrate(ctx, rows)
}

// Current returns the active menu whose week covers today.
func (s *Service) Current(ctx context.Context) (*dto.MenuResponse, error) {
	today := dbtime.StartOfDay(s.Now())
	var m model.MenuModel
	err := s.DB.WithContext(ctx).
		Where("is_active = ? AND week_start_date <= ? AND week_end_date >= ?", true, today, today).
		Order("week_start_date DESC").
		First(&m).Error
	if err != nil {
		return nil, apperr.FromStore(err, MsgNoCurrentMenu, "")
	}
	return s.one(ctx, &m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.MenuResponse, error) {
	m, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	return s.one(ctx, m)
}

func (s *Service) Create(ctx context.Context, actor helperAuth.Actor, req dto.CreateMenuRequest) (*dto.MenuResponse, error) {
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	start, end, err := WeekOf(req.WeekStartDate)
	if err != nil {
		return nil, err
	}
	m, err := s.insert(ctx, actor, start, end, dto.TrimMeals(req.Meals))
	if err != nil {
		return nil, err
	}
	return s.one(ctx, m)
}

// Update replaces the week, the meals or the active flag. A menu moved onto a
// week that already has one is a conflict.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req dto.UpdateMenuRequest) (*dto.MenuResponse, error) {
	var out *model.MenuModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		updates := map[string]any{}
		if req.WeekStartDate != nil {
			start, end, err := WeekOf(*req.WeekStartDate)
			if err != nil {
				return err
			}
			updates["week_start_date"] = start
			updates["week_end_date"] = end
		}
		if req.Meals != nil {
			updates["meals"] = datatypes.NewJSONType(dto.TrimMeals(*req.Meals))
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) > 0 {
			if err := tx.Model(m).Updates(updates).Error; err != nil {
				return apperr.FromStore(err, MsgNotFound, MsgWeekTaken)
			}
		}
		out, err = s.find(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.one(ctx, out)
}

// Delete deactivates the menu. Its week stays reserved.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Model(&model.MenuModel{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return apperr.Internal("delete menu", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	return nil
}

// Duplicate creates a new menu for another week with the source's meals.
func (s *Service) Duplicate(ctx context.Context, actor helperAuth.Actor, id uuid.UUID, req dto.DuplicateMenuRequest) (*dto.MenuResponse, error) {
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	src, err := s.find(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	start, end, err := WeekOf(req.WeekStartDate)
	if err != nil {
		return nil, err
	}
	m, err := s.insert(ctx, actor, start, end, src.Meals.Data())
	if err != nil {
		return nil, err
	}
	s.Log.Info("menu duplicated", zap.String("source_id", id.String()), zap.Time("week_start", start))
	return s.one(ctx, m)
}

func (s *Service) insert(ctx context.Context, actor helperAuth.Actor, start, end time.Time, meals model.WeeklyMeals) (*model.MenuModel, error) {
	m := &model.MenuModel{
		WeekStartDate: start,
		WeekEndDate:   end,
		Meals:         datatypes.NewJSONType(meals),
		CreatedBy:     actor.ID,
		IsActive:      true,
	}
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, MsgWeekTaken)
	}
	return m, nil
}

func (s *Service) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.MenuModel, error) {
	var m model.MenuModel
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}
	return &m, nil
}

func (s *Service) one(ctx context.Context, m *model.MenuModel) (*dto.MenuResponse, error) {
	list, err := s.hydrate(ctx, []model.MenuModel{*m})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// hydrate attaches creator names with a single lookup.
func (s *Service) hydrate(ctx context.Context, rows []model.MenuModel) ([]dto.MenuResponse, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].CreatedBy)
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var users []userModel.UserModel
		if err := s.DB.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, apperr.Internal("load creators", err)
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}
	out := make([]dto.MenuResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.FromModel(&rows[i], names[rows[i].CreatedBy]))
	}
	return out, nil
}
