package sheets

import (
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day zero of spreadsheet serial dates (Lotus epoch).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// serialToDate converts a spreadsheet serial number to a calendar date.
func serialToDate(serial float64) time.Time {
	return serialEpoch.AddDate(0, 0, int(serial))
}

// parseCellDate interprets a ledger date cell. Supported forms: serial
// numbers, ISO strings, and slash-separated day/month/year or
// month/day/year. When both slash orderings are plausible it returns
// both candidates, day-first first.
func parseCellDate(cell any) []time.Time {
	switch v := cell.(type) {
	case float64:
		return []time.Time{serialToDate(v)}
	case int:
		return []time.Time{serialToDate(float64(v))}
	case int64:
		return []time.Time{serialToDate(float64(v))}
	case string:
		return parseDateString(v)
	default:
		return nil
	}
}

// parseDateString handles the string date forms found in legacy sheets.
func parseDateString(raw string) []time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if serial, errParse := strconv.ParseFloat(raw, 64); errParse == nil {
		return []time.Time{serialToDate(serial)}
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, errParse := time.Parse(layout, raw); errParse == nil {
			return []time.Time{parsed}
		}
	}

	return parseSlashDate(raw)
}

// parseSlashDate parses a/b/y trying day-first, then month-first when
// the ordering is ambiguous.
func parseSlashDate(raw string) []time.Time {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return nil
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	year, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
	if errA != nil || errB != nil || errY != nil {
		return nil
	}
	if year < 100 {
		year += 2000
	}

	var candidates []time.Time
	if valid, date := calendarDate(year, b, a); valid {
		candidates = append(candidates, date) // day-first: a/b/y
	}
	if a != b {
		if valid, date := calendarDate(year, a, b); valid {
			candidates = append(candidates, date) // month-first: a/b/y
		}
	}
	return candidates
}

// calendarDate builds a date and reports whether month/day are in range.
func calendarDate(year, month, day int) (bool, time.Time) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false, time.Time{}
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject overflow like 31 February rolling into March.
	if date.Day() != day || date.Month() != time.Month(month) {
		return false, time.Time{}
	}
	return true, date
}

// cellMatchesDay reports whether any reading of the cell lands on the
// same calendar day as target.
func cellMatchesDay(cell any, target time.Time) bool {
	for _, candidate := range parseCellDate(cell) {
		if sameDay(candidate, target) {
			return true
		}
	}
	return false
}

// sameDay compares year, month, and day.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// cellFloat coerces a numeric cell into a float64.
func cellFloat(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, errParse := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if errParse != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
