package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"garderie_backend/internals/configs"
	"garderie_backend/internals/features/users/auth/dto"
	authRepo "garderie_backend/internals/features/users/auth/repository"
	userDTO "garderie_backend/internals/features/users/user/dto"
	userModel "garderie_backend/internals/features/users/user/model"
	helper "garderie_backend/internals/helpers"
	"garderie_backend/internals/helpers/apperr"
	"garderie_backend/internals/helpers/dbtime"
)

const (
	MsgCredentialsRequired = "email and password are required"
	MsgInvalidCredentials  = "invalid email or password"
	MsgAccountLocked       = "account locked after too many failed login attempts"
	MsgAccountDisabled     = "account disabled"
	MsgWrongPassword       = "current password is incorrect"
)

type Service struct {
	DB           *gorm.DB
	Validator    *validator.Validate
	Log          *zap.Logger
	Now          func() time.Time
	Secret       string
	TTL          time.Duration
	MaxAttempts  int
	LockDuration time.Duration
}

func New(db *gorm.DB, log *zap.Logger, cfg configs.AuthConfig) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		DB:           db,
		Validator:    helper.NewValidator(),
		Log:          log.Named("auth"),
		Now:          dbtime.Now,
		Secret:       cfg.JWTSecret,
		TTL:          cfg.JWTExpire,
		MaxAttempts:  cfg.MaxLoginAttempts,
		LockDuration: cfg.LockDuration,
	}
	if s.TTL <= 0 {
		s.TTL = 24 * time.Hour
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 5
	}
	if s.LockDuration <= 0 {
		s.LockDuration = 2 * time.Hour
	}
	return s
}

/* ====================== LOGIN ====================== */

// Login checks credentials and issues a bearer token. Failed attempts are
// counted; reaching MaxAttempts locks the account for LockDuration.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	req.Normalize()
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperr.Validation(MsgCredentialsRequired)
	}

	user, err := authRepo.FindUserByEmail(ctx, s.DB, req.Email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized(MsgInvalidCredentials)
		}
		return nil, apperr.Internal("find user", err)
	}

	now := s.Now()
	if user.IsLocked(now) {
		return nil, apperr.Locked(MsgAccountLocked)
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized(MsgAccountDisabled)
	}

	// an expired lock starts a fresh count
	if user.LockUntil != nil {
		if err := authRepo.ResetLoginState(ctx, s.DB, user.ID, nil); err != nil {
			return nil, apperr.Internal("reset login state", err)
		}
		user.LoginAttempts = 0
		user.LockUntil = nil
	}

	if !CheckPassword(user.Password, req.Password) {
		attempts, err := authRepo.RecordFailedLogin(ctx, s.DB, user.ID, s.MaxAttempts, now.Add(s.LockDuration))
		if err != nil {
			return nil, apperr.Internal("record failed login", err)
		}
		s.Log.Warn("failed login",
			zap.String("user_id", user.ID.String()),
			zap.Int("attempts", attempts))
		return nil, apperr.Unauthorized(MsgInvalidCredentials)
	}

	if err := authRepo.ResetLoginState(ctx, s.DB, user.ID, &now); err != nil {
		return nil, apperr.Internal("reset login state", err)
	}
	user.LoginAttempts = 0
	user.LastLoginAt = &now

	token, exp, err := helper.IssueAccessToken(s.Secret, user.ID, user.Role, user.Name, s.TTL, now)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}

	s.Log.Info("user logged in", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userDTO.FromModel(user, now),
	}, nil
}

/* ====================== PROFILE ====================== */

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*userDTO.UserResponse, error) {
	user, err := authRepo.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		return nil, apperr.FromStore(err, "user not found", "")
	}
	resp := userDTO.FromModel(user, s.Now())
	return &resp, nil
}

// UpdateProfile changes the caller's own name and phone.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*userDTO.UserResponse, error) {
	req.Normalize()
	if err := s.Validator.Struct(&req); err != nil {
		return nil, apperr.FromValidator(err)
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			updates["phone"] = nil
		} else {
			updates["phone"] = *req.Phone
		}
	}
	if len(updates) > 0 {
		res := s.DB.WithContext(ctx).Model(&userModel.UserModel{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, apperr.Internal("update profile", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.NotFound("user not found")
		}
	}
	return s.Me(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	if err := s.Validator.Struct(&req); err != nil {
		return apperr.FromValidator(err)
	}
	user, err := authRepo.FindUserByID(ctx, s.DB, userID)
	if err != nil {
		return apperr.FromStore(err, "user not found", "")
	}
	if !CheckPassword(user.Password, req.CurrentPassword) {
		return apperr.Validation(MsgWrongPassword)
	}
	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("hash password", err)
	}
	if err := authRepo.UpdateUserPassword(ctx, s.DB, userID, hash); err != nil {
		return apperr.Internal("update password", err)
	}
	s.Log.Info("password changed", zap.String("user_id", userID.String()))
	return nil
}

/* ====================== LOGOUT ====================== */

// Logout revokes raw until its own expiry.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperr.Unauthorized("no token provided")
	}
	expiresAt := s.Now().Add(s.TTL)
	if claims, err := helper.ParseAccessToken(s.Secret, raw); err == nil && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := authRepo.BlacklistToken(ctx, s.DB, helper.TokenDigest(s.Secret, raw), expiresAt); err != nil {
		return apperr.Internal("blacklist token", err)
	}
	return nil
}
