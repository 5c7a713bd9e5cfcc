package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "garderie_backend/internals/features/users/auth/model"
	userModel "garderie_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Where("email = ?", userModel.NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserPassword(ctx context.Context, db *gorm.DB, userID uuid.UUID, hash string) error {
	return db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ?", userID).
		Update("password", hash).Error
}

// RecordFailedLogin bumps the attempt counter and locks the account once it
// reaches maxAttempts. It returns the new count.
func RecordFailedLogin(ctx context.Context, db *gorm.DB, userID uuid.UUID, maxAttempts int, lockUntil time.Time) (int, error) {
	var attempts int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&userModel.UserModel{}).
			Where("id = ?", userID).
			UpdateColumn("login_attempts", gorm.Expr("login_attempts + 1")).Error; err != nil {
			return err
		}
		var u userModel.UserModel
		if err := tx.Select("id", "login_attempts").First(&u, "id = ?", userID).Error; err != nil {
			return err
		}
		attempts = u.LoginAttempts
		if attempts >= maxAttempts {
			return tx.Model(&userModel.UserModel{}).
				Where("id = ?", userID).
				UpdateColumn("lock_until", lockUntil).Error
		}
		return nil
	})
	return attempts, err
}

// ResetLoginState clears attempts and lock; when loggedInAt is set it also
// stamps last_login_at.
func ResetLoginState(ctx context.Context, db *gorm.DB, userID uuid.UUID, loggedInAt *time.Time) error {
	updates := map[string]any{"login_attempts": 0, "lock_until": nil}
	if loggedInAt != nil {
		updates["last_login_at"] = *loggedInAt
	}
	return db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ?", userID).
		UpdateColumns(updates).Error
}

/* ====================== BLACKLIST TOKEN ====================== */

// BlacklistToken stores the digest of a revoked token. Revoking twice is a no-op.
func BlacklistToken(ctx context.Context, db *gorm.DB, digest string, expiresAt time.Time) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&authModel.TokenBlacklist{Token: digest, ExpiredAt: expiresAt}).Error
}

// CleanupExpiredBlacklist removes entries whose token expired before cutoff.
func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expired_at <= ?", cutoff).Delete(&authModel.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
