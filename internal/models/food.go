package models

import "time"

// FoodItem is a shared catalog entry. Logging a food whose name already
// exists updates duby and unit in place, so the catalog row is mutable
// and shared across all historical log entries referencing it.
type FoodItem struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name string  `gorm:"type:text;not null;uniqueIndex"`       // Catalog name, unique.
	Duby float64 `gorm:"type:decimal(8,2);not null;default:0"` // Current per-unit cost.
	Unit string  `gorm:"type:text"`                            // Unit label (e.g. "piece", "100g").

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// FoodLog records one consumption entry. Created and deleted, never updated.
type FoodLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // Owning user ID.
	User   *User  `gorm:"foreignKey:UserID"`

	FoodItemID uint64    `gorm:"not null;index"` // Referenced catalog item.
	FoodItem   *FoodItem `gorm:"foreignKey:FoodItemID"`

	Portion    float64   `gorm:"type:decimal(8,2);not null;default:1"` // Portion multiplier.
	DubyCost   float64   `gorm:"type:decimal(8,2);not null;default:0"` // Per-unit cost snapshot at logging time.
	OccurredAt time.Time `gorm:"not null;index"`                       // When the food was consumed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
