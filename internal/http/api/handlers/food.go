package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dubytrack/dubytrack/internal/db"
	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// searchResultLimit caps the number of catalog matches returned.
const searchResultLimit = 10

// FoodHandler serves the food catalog and the per-user food log.
type FoodHandler struct {
	db     *gorm.DB
	mirror Mirror
}

// NewFoodHandler constructs a FoodHandler.
func NewFoodHandler(conn *gorm.DB, mirror Mirror) *FoodHandler {
	return &FoodHandler{db: conn, mirror: mirror}
}

// Search returns catalog items whose name contains the query,
// case-insensitively. An empty query returns an empty list.
func (h *FoodHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"items": []gin.H{}})
		return
	}

	pattern := "%" + db.NormalizeLikePattern(h.db, query) + "%"
	var items []models.FoodItem
	errFind := h.db.WithContext(c.Request.Context()).
		Where(db.CaseInsensitiveLikeExpr(h.db, "name"), pattern).
		Order("name ASC").
		Limit(searchResultLimit).
		Find(&items).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFind.Error()})
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, item := range items {
		out = append(out, gin.H{
			"id":   item.ID,
			"name": item.Name,
			"duby": item.Duby,
			"unit": item.Unit,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// foodLogRequest defines the request body for logging a food. Date is a
// legacy alias for OccurredAt; OccurredAt wins when both are sent.
type foodLogRequest struct {
	Name       string   `json:"name"`
	Duby       float64  `json:"duby"`
	Unit       string   `json:"unit"`
	Portion    *float64 `json:"portion"`
	OccurredAt string   `json:"occurred_at"`
	Date       string   `json:"date"`
}

// parseLogTime accepts a full RFC3339 timestamp or a bare date.
func parseLogTime(raw string) (time.Time, error) {
	if parsed, errParse := time.Parse(time.RFC3339, raw); errParse == nil {
		return parsed.UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}

// Log records a consumption entry. The catalog item is upserted by name
// case-insensitively, and the entry snapshots the per-unit cost so that
// later catalog edits do not rewrite history.
func (h *FoodHandler) Log(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	var body foodLogRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.Duby < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	portion := 1.0
	if body.Portion != nil {
		portion = *body.Portion
	}
	if portion <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	occurredAt := time.Now().UTC()
	raw := body.OccurredAt
	if raw == "" {
		raw = body.Date
	}
	if raw != "" {
		parsed, errParse := parseLogTime(raw)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
		occurredAt = parsed
	}

	ctx := c.Request.Context()

	var item models.FoodItem
	errItem := h.db.WithContext(ctx).
		Where(db.CaseInsensitiveEqExpr("name"), name).
		First(&item).Error
	switch {
	case errItem == nil:
		item.Duby = body.Duby
		if body.Unit != "" {
			item.Unit = body.Unit
		}
		if errSave := h.db.WithContext(ctx).Save(&item).Error; errSave != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errSave.Error()})
			return
		}
	case errors.Is(errItem, gorm.ErrRecordNotFound):
		item = models.FoodItem{Name: name, Duby: body.Duby, Unit: body.Unit}
		if errCreate := h.db.WithContext(ctx).Create(&item).Error; errCreate != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": errCreate.Error()})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": errItem.Error()})
		return
	}

	entry := models.FoodLog{
		UserID:     userID,
		FoodItemID: item.ID,
		Portion:    portion,
		DubyCost:   item.Duby,
		OccurredAt: occurredAt,
	}
	if errCreate := h.db.WithContext(ctx).Create(&entry).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errCreate.Error()})
		return
	}

	var user models.User
	if errUser := h.db.WithContext(ctx).First(&user, userID).Error; errUser == nil {
		mirrorLedgerDay(ctx, h.mirror, h.db, user, occurredAt)
	}

	c.JSON(http.StatusCreated, gin.H{"id": entry.ID})
}

// Delete removes one of the user's log entries by ID.
func (h *FoodHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	entryID, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	ctx := c.Request.Context()

	var entry models.FoodLog
	errFind := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&entry).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "log entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": errFind.Error()})
		return
	}

	result := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.FoodLog{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "log entry not found"})
		return
	}

	var user models.User
	if errUser := h.db.WithContext(ctx).First(&user, userID).Error; errUser == nil {
		mirrorLedgerDay(ctx, h.mirror, h.db, user, entry.OccurredAt)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
