package sheets

import (
	"context"
	"fmt"
	"time"
)

// Sheet layout: general info sits in row 2, the daily ledger starts at
// row 6 with columns date / daily budget / foods / price / remaining.
const (
	generalInfoRow = 2
	ledgerFirstRow = 6
)

// ledgerDateLayout is the format used when writing ledger dates. The
// reader accepts legacy serial and slash formats as well.
const ledgerDateLayout = "2006-01-02"

// ProfileRow is the general info written to row 2 of a user tab.
type ProfileRow struct {
	Name           string
	HeightCm       int
	StartWeightKg  float64
	Gender         string
	Age            int
	TargetWeightKg float64
	TargetDate     string
	DailyBudget    int
}

// LedgerRow is one per-day record of the budget ledger.
type LedgerRow struct {
	Date        time.Time
	DailyBudget int
	Foods       string
	Price       float64
	Remaining   float64
}

// WriteProfile overwrites the general info row of a user tab.
func (m *Mirror) WriteProfile(ctx context.Context, tab string, row ProfileRow) error {
	rng := fmt.Sprintf("'%s'!A%d:H%d", tab, generalInfoRow, generalInfoRow)
	values := [][]any{{
		row.Name,
		row.HeightCm,
		row.StartWeightKg,
		row.Gender,
		row.Age,
		row.TargetWeightKg,
		row.TargetDate,
		row.DailyBudget,
	}}
	return m.ops.WriteRange(ctx, rng, values)
}

// WriteWeight updates only the weight cell of the general info row.
func (m *Mirror) WriteWeight(ctx context.Context, tab string, weightKg float64) error {
	rng := fmt.Sprintf("'%s'!C%d", tab, generalInfoRow)
	return m.ops.WriteRange(ctx, rng, [][]any{{weightKg}})
}

// findLedgerRow scans the ledger date column top to bottom and returns
// the absolute row number of the first row matching day, or 0 when no
// row matches. The second return is the number of scanned rows, used to
// locate the first free row for appends.
func (m *Mirror) findLedgerRow(ctx context.Context, tab string, day time.Time) (int, int, error) {
	rng := fmt.Sprintf("'%s'!A%d:A", tab, ledgerFirstRow)
	rows, errRead := m.ops.ReadRange(ctx, rng)
	if errRead != nil {
		return 0, 0, errRead
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if cellMatchesDay(row[0], day) {
			return ledgerFirstRow + i, len(rows), nil
		}
	}
	return 0, len(rows), nil
}

// UpsertLedgerRow overwrites the ledger row for entry.Date in place, or
// appends one at the first free ledger row. Concurrent upserts for the
// same day race; the last write wins.
func (m *Mirror) UpsertLedgerRow(ctx context.Context, tab string, entry LedgerRow) error {
	rowNum, scanned, errFind := m.findLedgerRow(ctx, tab, entry.Date)
	if errFind != nil {
		return errFind
	}
	if rowNum == 0 {
		rowNum = ledgerFirstRow + scanned
	}
	rng := fmt.Sprintf("'%s'!A%d:E%d", tab, rowNum, rowNum)
	values := [][]any{{
		entry.Date.Format(ledgerDateLayout),
		entry.DailyBudget,
		entry.Foods,
		entry.Price,
		entry.Remaining,
	}}
	return m.ops.WriteRange(ctx, rng, values)
}

// LedgerForDay returns the ledger row for day when one exists.
func (m *Mirror) LedgerForDay(ctx context.Context, tab string, day time.Time) (LedgerRow, bool, error) {
	rowNum, _, errFind := m.findLedgerRow(ctx, tab, day)
	if errFind != nil {
		return LedgerRow{}, false, errFind
	}
	if rowNum == 0 {
		return LedgerRow{}, false, nil
	}

	rng := fmt.Sprintf("'%s'!A%d:E%d", tab, rowNum, rowNum)
	rows, errRead := m.ops.ReadRange(ctx, rng)
	if errRead != nil {
		return LedgerRow{}, false, errRead
	}
	if len(rows) == 0 {
		return LedgerRow{}, false, nil
	}

	entry := LedgerRow{Date: day}
	cells := rows[0]
	if len(cells) > 1 {
		if budget, ok := cellFloat(cells[1]); ok {
			entry.DailyBudget = int(budget)
		}
	}
	if len(cells) > 2 {
		if foods, ok := cells[2].(string); ok {
			entry.Foods = foods
		}
	}
	if len(cells) > 3 {
		if price, ok := cellFloat(cells[3]); ok {
			entry.Price = price
		}
	}
	if len(cells) > 4 {
		if remaining, ok := cellFloat(cells[4]); ok {
			entry.Remaining = remaining
		}
	}
	return entry, true, nil
}
