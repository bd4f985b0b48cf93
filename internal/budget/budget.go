// Package budget computes the daily duby allowance from profile attributes.
package budget

import (
	"math"
	"strings"
)

// Activity level names accepted by Daily.
const (
	Sedentary = "sedentary"
	Light     = "light"
	Moderate  = "moderate"
	Intense   = "intense"
)

// activityFactor maps an activity level to its TDEE multiplier.
func activityFactor(level string) float64 {
	switch level {
	case Light:
		return 1.375
	case Moderate:
		return 1.55
	case Intense:
		return 1.725
	default:
		return 1.2
	}
}

// isMale reports whether the free-text gender reads as male: the first
// character decides, case-insensitively.
func isMale(gender string) bool {
	trimmed := strings.TrimSpace(gender)
	if trimmed == "" {
		return false
	}
	first := trimmed[0]
	return first == 'm' || first == 'M'
}

// BMR computes the basal metabolic rate via the Mifflin-St Jeor formula.
func BMR(gender string, age, heightCm int, weightKg float64) float64 {
	offset := -161.0
	if isMale(gender) {
		offset = 5.0
	}
	return 10*weightKg + 6.25*float64(heightCm) - 5*float64(age) + offset
}

// Score computes the point heuristic: a gender base plus fixed buckets
// over weight, height, and age. It is independent of the BMR figure and
// strictly positive for any positive age/height/weight, which makes the
// BMR fallback in Daily unreachable under validated input.
func Score(gender string, age, heightCm int, weightKg float64) int {
	score := 8
	if isMale(gender) {
		score = 15
	}

	switch {
	case weightKg >= 90:
		score += 5
	case weightKg >= 75:
		score += 4
	case weightKg >= 60:
		score += 2
	default:
		score++
	}

	switch {
	case heightCm >= 185:
		score += 3
	case heightCm >= 175:
		score += 2
	case heightCm >= 160:
		score++
	}

	switch {
	case age < 37:
		score += 3
	case age < 58:
		score += 2
	default:
		score++
	}

	return score
}

// Daily maps profile attributes to the integer daily duby budget. The
// point heuristic decides; the BMR/TDEE path remains as the documented
// fallback for a non-positive score. Callers validate ranges beforehand.
func Daily(gender string, age, heightCm int, weightKg float64, activityLevel string) int {
	if score := Score(gender, age, heightCm, weightKg); score > 0 {
		return score*9 + 2
	}
	tdee := BMR(gender, age, heightCm, weightKg) * activityFactor(activityLevel)
	return int(math.Round(tdee / 300))
}
