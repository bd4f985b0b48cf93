package sheets

import (
	"testing"
	"time"
)

func TestSerialDate(t *testing.T) {
	// 45000 days past 1899-12-30 is 15 March 2023.
	got := serialToDate(45000)
	want := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if !cellMatchesDay(float64(45000), want) {
		t.Fatalf("expected serial 45000 to match 2023-03-15")
	}
	if cellMatchesDay(float64(45000), want.AddDate(0, 0, 1)) {
		t.Fatalf("expected serial 45000 not to match 2023-03-16")
	}
}

func TestParseCellDate_SlashDayFirst(t *testing.T) {
	// Day 14 cannot be a month, so 14/3/2024 is unambiguous day-first.
	candidates := parseCellDate("14/3/2024")
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	want := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	if !candidates[0].Equal(want) {
		t.Fatalf("expected %s, got %s", want, candidates[0])
	}
}

func TestParseCellDate_SlashAmbiguous(t *testing.T) {
	// 4/3/2024 could be 4 March or 3 April; both orderings are tried,
	// day-first reported first.
	candidates := parseCellDate("4/3/2024")
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	dayFirst := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	monthFirst := time.Date(2024, time.April, 3, 0, 0, 0, 0, time.UTC)
	if !candidates[0].Equal(dayFirst) {
		t.Fatalf("expected day-first %s, got %s", dayFirst, candidates[0])
	}
	if !candidates[1].Equal(monthFirst) {
		t.Fatalf("expected month-first %s, got %s", monthFirst, candidates[1])
	}
	if !cellMatchesDay("4/3/2024", dayFirst) || !cellMatchesDay("4/3/2024", monthFirst) {
		t.Fatalf("expected ambiguous cell to match either reading")
	}
}

func TestParseCellDate_ISO(t *testing.T) {
	candidates := parseCellDate("2024-03-14")
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if !candidates[0].Equal(time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %s", candidates[0])
	}
}

func TestParseCellDate_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not a date", "31/2/2024", "1/2/3/4"} {
		if got := parseCellDate(raw); len(got) != 0 {
			t.Fatalf("expected no candidates for %q, got %v", raw, got)
		}
	}
	if got := parseCellDate("13/13/2024"); len(got) != 0 {
		t.Fatalf("expected no candidates for 13/13/2024, got %v", got)
	}
}
