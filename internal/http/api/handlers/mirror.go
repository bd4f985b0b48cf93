package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/dubytrack/dubytrack/internal/sheets"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Mirror is the slice of the spreadsheet mirror the handlers use.
// *sheets.Mirror satisfies it; tests substitute their own.
type Mirror interface {
	EnsureUserTab(ctx context.Context, displayName string) (string, error)
	WriteProfile(ctx context.Context, tab string, row sheets.ProfileRow) error
	WriteWeight(ctx context.Context, tab string, weightKg float64) error
	UpsertLedgerRow(ctx context.Context, tab string, entry sheets.LedgerRow) error
	LedgerForDay(ctx context.Context, tab string, day time.Time) (sheets.LedgerRow, bool, error)
}

// Every mirror write in this file is fire-and-forget: the relational
// store has already been mutated and the response must not depend on
// the spreadsheet. Failures are logged at warn and dropped.

// dayRange returns the [start, end) bounds of the calendar day of t, UTC.
func dayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// dayLogs loads a user's food logs for the day of t, catalog preloaded.
func dayLogs(ctx context.Context, conn *gorm.DB, userID uint64, t time.Time) ([]models.FoodLog, error) {
	start, end := dayRange(t)
	var logs []models.FoodLog
	errFind := conn.WithContext(ctx).
		Preload("FoodItem").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, start, end).
		Order("occurred_at ASC").
		Find(&logs).Error
	if errFind != nil {
		return nil, errFind
	}
	return logs, nil
}

// logPrice is the displayed cost of one entry: snapshot cost × portion.
func logPrice(entry models.FoodLog) float64 {
	return entry.DubyCost * entry.Portion
}

// mirrorEnsureTab clones the user's sheet tab if needed, best effort.
func mirrorEnsureTab(ctx context.Context, mirror Mirror, name string) {
	if mirror == nil {
		return
	}
	if _, errEnsure := mirror.EnsureUserTab(ctx, name); errEnsure != nil {
		log.WithError(errEnsure).Warn("sheets mirror: ensure tab skipped")
	}
}

// mirrorProfile rewrites the general info row of the user's tab.
func mirrorProfile(ctx context.Context, mirror Mirror, user models.User, profile models.Profile) {
	if mirror == nil {
		return
	}
	tab, errEnsure := mirror.EnsureUserTab(ctx, user.Name)
	if errEnsure != nil {
		log.WithError(errEnsure).Warn("sheets mirror: profile write skipped")
		return
	}
	targetDate := ""
	if profile.TargetDate != nil {
		targetDate = profile.TargetDate.Format("2006-01-02")
	}
	row := sheets.ProfileRow{
		Name:           user.Name,
		HeightCm:       profile.HeightCm,
		StartWeightKg:  profile.CurrentWeightKg,
		Gender:         profile.Gender,
		Age:            profile.Age,
		TargetWeightKg: profile.GoalWeightKg,
		TargetDate:     targetDate,
		DailyBudget:    profile.DailyBudget,
	}
	if errWrite := mirror.WriteProfile(ctx, tab, row); errWrite != nil {
		log.WithError(errWrite).Warn("sheets mirror: profile write skipped")
	}
}

// mirrorWeight updates the weight cell of the user's tab.
func mirrorWeight(ctx context.Context, mirror Mirror, user models.User, weightKg float64) {
	if mirror == nil {
		return
	}
	tab, errEnsure := mirror.EnsureUserTab(ctx, user.Name)
	if errEnsure != nil {
		log.WithError(errEnsure).Warn("sheets mirror: weight write skipped")
		return
	}
	if errWrite := mirror.WriteWeight(ctx, tab, weightKg); errWrite != nil {
		log.WithError(errWrite).Warn("sheets mirror: weight write skipped")
	}
}

// mirrorLedgerDay recomputes the user's ledger row for the day of t from
// the relational store and upserts it into the sheet.
func mirrorLedgerDay(ctx context.Context, mirror Mirror, conn *gorm.DB, user models.User, t time.Time) {
	if mirror == nil {
		return
	}
	tab, errEnsure := mirror.EnsureUserTab(ctx, user.Name)
	if errEnsure != nil {
		log.WithError(errEnsure).Warn("sheets mirror: ledger write skipped")
		return
	}

	budget := 0
	var profile models.Profile
	if errFind := conn.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; errFind == nil {
		budget = profile.DailyBudget
	}

	logs, errLogs := dayLogs(ctx, conn, user.ID, t)
	if errLogs != nil {
		log.WithError(errLogs).Warn("sheets mirror: ledger write skipped")
		return
	}

	names := make([]string, 0, len(logs))
	total := 0.0
	for _, entry := range logs {
		if entry.FoodItem != nil {
			names = append(names, entry.FoodItem.Name)
		}
		total += logPrice(entry)
	}

	start, _ := dayRange(t)
	entry := sheets.LedgerRow{
		Date:        start,
		DailyBudget: budget,
		Foods:       strings.Join(names, ", "),
		Price:       total,
		Remaining:   float64(budget) - total,
	}
	if errUpsert := mirror.UpsertLedgerRow(ctx, tab, entry); errUpsert != nil {
		log.WithError(errUpsert).Warn("sheets mirror: ledger write skipped")
	}
}
