package models

import "time"

// RefreshToken backs silent session renewal. Login and registration
// issue one alongside the session cookie; logout revokes it. Only the
// hash of the token is stored.
type RefreshToken struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`

	TokenHash string    `gorm:"type:text;not null;uniqueIndex"` // Hash of the refresh token.
	ExpiresAt time.Time `gorm:"not null"`                       // Expiry timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
