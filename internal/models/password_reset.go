package models

import "time"

// PasswordReset holds the single outstanding reset code of a user.
type PasswordReset struct {
	Base
	UserID    string    `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ResetCode string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
