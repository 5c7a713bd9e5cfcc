package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is a staff account of the daycare.
type UserModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	Name          string     `gorm:"type:varchar(100);not null;column:name" json:"name"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email;column:email" json:"email"`
	Password      string     `gorm:"type:varchar(255);not null;column:password" json:"-"`
	Role          string     `gorm:"type:varchar(16);not null;column:role;index:idx_users_role_active,priority:1" json:"role"`
	Phone         *string    `gorm:"type:varchar(32);column:phone" json:"phone,omitempty"`
	IsActive      bool       `gorm:"not null;column:is_active;index:idx_users_role_active,priority:2" json:"is_active"`
	LoginAttempts int        `gorm:"not null;default:0;column:login_attempts" json:"-"`
	LockUntil     *time.Time `gorm:"column:lock_until" json:"-"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// IsLocked reports an unexpired login lock.
func (u *UserModel) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
