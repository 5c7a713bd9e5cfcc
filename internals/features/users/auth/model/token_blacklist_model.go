package model

import "time"

// TokenBlacklist stores HMAC digests of revoked access tokens until they
// would have expired anyway.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_token_blacklist_token" json:"-"`
	ExpiredAt time.Time `gorm:"not null;index:idx_token_blacklist_expired_at" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string {
	return "token_blacklist"
}
