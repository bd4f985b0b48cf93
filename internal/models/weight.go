package models

import "time"

// WeightLog records one weigh-in. Append-only from the API's perspective.
type WeightLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`

	WeightKg float64   `gorm:"type:decimal(6,2);not null"` // Weight in kilograms.
	Date     time.Time `gorm:"not null;index"`             // Weigh-in date.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
