package handlers

import (
	"net/http"
	"time"

	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/dubytrack/dubytrack/internal/sheets"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// weighInWeekday is the day of the week weigh-ins are scheduled for.
const weighInWeekday = time.Friday

// DashboardHandler assembles the daily view.
type DashboardHandler struct {
	db          *gorm.DB
	mirror      Mirror
	ledgerReads bool
}

// NewDashboardHandler constructs a DashboardHandler. ledgerReads selects
// the spreadsheet ledger as the source for the remaining figure.
func NewDashboardHandler(conn *gorm.DB, mirror Mirror, ledgerReads bool) *DashboardHandler {
	return &DashboardHandler{db: conn, mirror: mirror, ledgerReads: ledgerReads}
}

// nextWeighIn returns the next scheduled weigh-in date strictly after
// today when today is the weigh-in day itself.
func nextWeighIn(now time.Time) time.Time {
	days := (int(weighInWeekday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// Today returns the current day's log entries, totals, and remaining
// budget. When ledger reads are selected, the remaining figure comes
// from the spreadsheet ledger, which may fold in adjustments made
// directly in the sheet; otherwise it is budget minus the day's total.
func (h *DashboardHandler) Today(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}

	ctx := c.Request.Context()
	now := time.Now().UTC()

	var user models.User
	errUser := h.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error
	if errUser != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errUser.Error()})
		return
	}

	logs, errLogs := dayLogs(ctx, h.db, userID, now)
	if errLogs != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errLogs.Error()})
		return
	}

	items := make([]gin.H, 0, len(logs))
	total := 0.0
	for _, entry := range logs {
		name, unit := "", ""
		if entry.FoodItem != nil {
			name = entry.FoodItem.Name
			unit = entry.FoodItem.Unit
		}
		items = append(items, gin.H{
			"id":          entry.ID,
			"name":        name,
			"unit":        unit,
			"portion":     entry.Portion,
			"price":       logPrice(entry),
			"occurred_at": entry.OccurredAt.Format(time.RFC3339),
		})
		total += logPrice(entry)
	}

	dailyBudget := 0
	if user.Profile != nil {
		dailyBudget = user.Profile.DailyBudget
	}
	remaining := float64(dailyBudget) - total

	// Reads use the sanitized tab title directly so that a dashboard
	// view never creates a tab as a side effect.
	if h.ledgerReads && h.mirror != nil {
		tab := sheets.SanitizeTabTitle(user.Name)
		row, found, errLedger := h.mirror.LedgerForDay(ctx, tab, now)
		if errLedger != nil {
			log.WithError(errLedger).Warn("sheets mirror: ledger read skipped")
		} else if found {
			remaining = row.Remaining
		}
	}

	// Key casing kept from the legacy client contract.
	c.JSON(http.StatusOK, gin.H{
		"date":               now.Format("2006-01-02"),
		"daily_budget":       dailyBudget,
		"items":              items,
		"total":              total,
		"remainingDubyToday": remaining,
		"nextWeighIn":        nextWeighIn(now).Format("2006-01-02"),
	})
}
