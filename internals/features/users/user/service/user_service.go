package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/constants"
	authService "garderie_backend/internals/features/users/auth/service"
	"garderie_backend/internals/features/users/user/dto"
	"garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgNotFound   = "user not found"
	MsgEmailTaken = "a user with this email already exists"
	MsgLastAdmin  = "cannot remove the last active administrator"

	DefaultListLimit = 20
	MaxListLimit     = 100
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
		Log:       log.Named("users"),
		Now:       dbtime.Now,
	}
}

type ListQuery struct {
	Role   string
	Search string
	Page   int
	Limit  int
}

type ListResult struct {
	Items      []dto.UserResponse
	Pagination helper.Pagination
}

// List returns accounts newest first.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	paging := helper.NewPaging(q.Page, q.Limit, DefaultListLimit, MaxListLimit)

	tx := s.DB.WithContext(ctx).Model(&model.UserModel{})
	if role := strings.ToLower(strings.TrimSpace(q.Role)); role != "" {
		tx = tx.Where("role = ?", role)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("count users", err)
	}
	var rows []model.UserModel
	if err := tx.Session(&gorm.Session{}).
		Order("created_at DESC").
		Limit(paging.Limit).Offset(paging.Offset).
		Find(&rows).Error; err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return &ListResult{
		Items:      dto.FromModels(rows, s.Now()),
		Pagination: helper.BuildPaginationFromPage(total, paging.Page, paging.Limit),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	var m model.UserModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, "")
	}
	resp := dto.FromModel(&m, s.Now())
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	if req.Role == "" {
		req.Role = constants.RoleStaff
	}

	var exists int64
	if err := s.DB.WithContext(ctx).Model(&model.UserModel{}).Where("email = ?", req.Email).Count(&exists).Error; err != nil {
		return nil, apperr.Internal("check email", err)
	}
	if exists > 0 {
		return nil, apperr.Conflict(MsgEmailTaken, nil)
	}

	hash, err := authService.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	m := &model.UserModel{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
		Phone:    req.Phone,
		IsActive: true,
	}
	// the unique index still catches a concurrent insert
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, MsgEmailTaken)
	}
	s.Log.Info("user created", zap.String("user_id", m.ID.String()), zap.String("role", m.Role))

	resp := dto.FromModel(m, s.Now())
	return &resp, nil
}

// Update applies a partial change. Demoting or deactivating the last active
// admin is refused.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}

	var out model.UserModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.UserModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err, MsgNotFound, "")
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Email != nil && *req.Email != m.Email {
			updates["email"] = *req.Email
		}
		if req.Role != nil {
			updates["role"] = *req.Role
		}
		if req.Phone != nil {
			if *req.Phone == "" {
				updates["phone"] = nil
			} else {
				updates["phone"] = *req.Phone
			}
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}

		losesAdmin := (req.Role != nil && *req.Role != constants.RoleAdmin) ||
			(req.IsActive != nil && !*req.IsActive)
		if m.Role == constants.RoleAdmin && m.IsActive && losesAdmin {
			if err := s.guardLastAdmin(tx); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&m).Updates(updates).Error; err != nil {
				return apperr.FromStore(err, MsgNotFound, MsgEmailTaken)
			}
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, apperr.FromStore(err, MsgNotFound, MsgEmailTaken)
	}
	resp := dto.FromModel(&out, s.Now())
	return &resp, nil
}

// Delete removes the account. The last active admin cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.UserModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return apperr.FromStore(err, MsgNotFound, "")
		}
		if m.Role == constants.RoleAdmin && m.IsActive {
			if err := s.guardLastAdmin(tx); err != nil {
				return err
			}
		}
		if err := tx.Delete(&m).Error; err != nil {
			return apperr.Internal("delete user", err)
		}
		s.Log.Info("user deleted", zap.String("user_id", id.String()))
		return nil
	})
}

// ResetPassword sets a new password and clears any login lock.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, req dto.ResetPasswordRequest) error {
	if err := s.Validator.Struct(&req); err != nil {
		return apperr.FromValidator(err)
	}
	hash, err := authService.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	res := s.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"password":       hash,
			"login_attempts": 0,
			"lock_until":     nil,
		})
	if res.Error != nil {
		return apperr.Internal("reset password", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(MsgNotFound)
	}
	s.Log.Info("password reset", zap.String("user_id", id.String()))
	return nil
}

func (s *Service) guardLastAdmin(tx *gorm.DB) error {
	var admins int64
	if err := tx.Model(&model.UserModel{}).
		Where("role = ? AND is_active = ?", constants.RoleAdmin, true).
		Count(&admins).Error; err != nil {
		return apperr.Internal("count admins", err)
	}
	if admins <= 1 {
		return apperr.Forbidden(MsgLastAdmin)
	}
	return nil
}
