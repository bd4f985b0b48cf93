package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/dubytrack/dubytrack/internal/budget"
	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileHandler serves the current user's account and diet profile.
type ProfileHandler struct {
	db     *gorm.DB
	mirror Mirror
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB, mirror Mirror) *ProfileHandler {
	return &ProfileHandler{db: db, mirror: mirror}
}

// Me returns the authenticated user, their profile, and the last weigh-in.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	errFind := h.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFind.Error()})
		return
	}

	resp := gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}

	if user.Profile != nil {
		profile := gin.H{
			"height_cm":         user.Profile.HeightCm,
			"current_weight_kg": user.Profile.CurrentWeightKg,
			"goal_weight_kg":    user.Profile.GoalWeightKg,
			"gender":            user.Profile.Gender,
			"age":               user.Profile.Age,
			"activity_level":    user.Profile.ActivityLevel,
			"daily_duby_budget": user.Profile.DailyBudget,
		}
		if user.Profile.TargetDate != nil {
			profile["target_date"] = user.Profile.TargetDate.Format("2006-01-02")
		}
		resp["profile"] = profile
	}

	var lastWeight models.WeightLog
	errWeight := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		First(&lastWeight).Error
	if errWeight == nil {
		resp["last_weigh_in"] = gin.H{
			"weight_kg": lastWeight.WeightKg,
			"date":      lastWeight.Date.Format("2006-01-02"),
		}
	}

	c.JSON(http.StatusOK, resp)
}

// profileRequest defines the request body for a profile save.
type profileRequest struct {
	HeightCm        int     `json:"height_cm"`
	CurrentWeightKg float64 `json:"current_weight_kg"`
	GoalWeightKg    float64 `json:"goal_weight_kg"`
	TargetDate      string  `json:"target_date"`
	Gender          string  `json:"gender"`
	Age             int     `json:"age"`
	ActivityLevel   string  `json:"activity_level"`
}

// SaveProfile replaces the user's profile wholesale and recomputes the
// daily duby budget from the submitted measurements.
func (h *ProfileHandler) SaveProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var body profileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}
	if body.HeightCm <= 0 || body.CurrentWeightKg <= 0 || body.GoalWeightKg <= 0 || body.Age <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}
	if !models.ValidActivityLevel(body.ActivityLevel) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
		return
	}

	var targetDate *time.Time
	if body.TargetDate != "" {
		parsed, errParse := time.Parse("2006-01-02", body.TargetDate)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile"})
			return
		}
		targetDate = &parsed
	}

	daily := budget.Daily(body.Gender, body.Age, body.HeightCm, body.CurrentWeightKg, body.ActivityLevel)

	profile := models.Profile{
		UserID:          userID,
		HeightCm:        body.HeightCm,
		CurrentWeightKg: body.CurrentWeightKg,
		GoalWeightKg:    body.GoalWeightKg,
		TargetDate:      targetDate,
		Gender:          body.Gender,
		Age:             body.Age,
		ActivityLevel:   body.ActivityLevel,
		DailyBudget:     daily,
		UpdatedAt:       time.Now().UTC(),
	}

	ctx := c.Request.Context()
	errSave := h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(&profile).Error
	if errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errSave.Error()})
		return
	}

	var user models.User
	if errUser := h.db.WithContext(ctx).First(&user, userID).Error; errUser == nil {
		mirrorProfile(ctx, h.mirror, user, profile)
	}

	c.JSON(http.StatusOK, gin.H{"daily_duby_budget": daily})
}
