package models

import "time"

// Activity levels accepted by the profile endpoint.
const (
	ActivitySedentary = "sedentary"
	ActivityLight     = "light"
	ActivityModerate  = "moderate"
	ActivityIntense   = "intense"
)

// Profile holds the diet profile for a user, replaced wholesale on save.
type Profile struct {
	UserID uint64 `gorm:"primaryKey"` // Owning user ID (one-to-one).

	HeightCm        int        `gorm:"not null;default:0"`                   // Height in centimeters.
	CurrentWeightKg float64    `gorm:"type:decimal(6,2);not null;default:0"` // Current weight in kilograms.
	GoalWeightKg    float64    `gorm:"type:decimal(6,2);not null;default:0"` // Goal weight in kilograms.
	TargetDate      *time.Time // Optional goal target date.
	Gender          string     `gorm:"type:text"`                              // Free-text gender.
	Age             int        `gorm:"not null;default:0"`                     // Age in years.
	ActivityLevel   string     `gorm:"type:text;not null;default:'sedentary'"` // One of the activity levels above.
	DailyBudget     int        `gorm:"not null;default:0"`                     // Computed daily duby budget.

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// ValidActivityLevel reports whether level is one of the accepted values.
func ValidActivityLevel(level string) bool {
	switch level {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityIntense:
		return true
	}
	return false
}
