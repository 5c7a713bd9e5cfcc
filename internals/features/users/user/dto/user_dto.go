package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"garderie_backend/internals/features/users/user/model"
)

/* =========================================================
   REQUEST
========================================================= */

type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin staff"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

func (r *CreateUserRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = model.NormalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Phone != nil {
		p := strings.TrimSpace(*r.Phone)
		r.Phone = &p
	}
}

// UpdateUserRequest is a partial update; nil fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin staff"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Email != nil {
		v := model.NormalizeEmail(*r.Email)
		r.Email = &v
	}
	if r.Role != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &v
	}
	if r.Phone != nil {
		v := strings.TrimSpace(*r.Phone)
		r.Phone = &v
	}
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

/* =========================================================
   RESPONSE
========================================================= */

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Phone       *string    `json:"phone,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsLocked    bool       `json:"is_locked"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func FromModel(m *model.UserModel, now time.Time) UserResponse {
	return UserResponse{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Role:        m.Role,
		Phone:       m.Phone,
		IsActive:    m.IsActive,
		IsLocked:    m.IsLocked(now),
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func FromModels(list []model.UserModel, now time.Time) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i], now))
	}
	return out
}
