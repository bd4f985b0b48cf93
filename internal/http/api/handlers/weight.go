package handlers

import (
	"net/http"
	"time"

	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// WeightHandler records weigh-ins.
type WeightHandler struct {
	db     *gorm.DB
	mirror Mirror
}

// NewWeightHandler constructs a WeightHandler.
func NewWeightHandler(conn *gorm.DB, mirror Mirror) *WeightHandler {
	return &WeightHandler{db: conn, mirror: mirror}
}

// weightLogRequest defines the request body for a weigh-in.
type weightLogRequest struct {
	WeightKg float64 `json:"weight_kg"`
	Date     string  `json:"date"`
}

// Log records one weigh-in and updates the profile's current weight.
func (h *WeightHandler) Log(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var body weightLogRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if body.WeightKg <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	date := time.Now().UTC()
	if body.Date != "" {
		parsed, errParse := time.Parse("2006-01-02", body.Date)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
		date = parsed
	}

	ctx := c.Request.Context()

	entry := models.WeightLog{
		UserID:   userID,
		WeightKg: body.WeightKg,
		Date:     date,
	}
	if errCreate := h.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCreate.Error()})
		return
	}

	// Keep the profile's current weight in step with the latest weigh-in.
	h.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("current_weight_kg", body.WeightKg)

	var user models.User
	if errUser := h.db.WithContext(ctx).First(&user, userID).Error; errUser == nil {
		mirrorWeight(ctx, h.mirror, user, body.WeightKg)
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        entry.ID,
		"weight_kg": entry.WeightKg,
		"date":      entry.Date.Format("2006-01-02"),
	})
}
