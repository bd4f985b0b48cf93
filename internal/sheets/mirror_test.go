package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeOps is an in-memory spreadsheet. Cells are stored per tab as
// row -> column -> value, rows and columns 1-based.
type fakeOps struct {
	tabs       []Tab
	cells      map[string]map[int][]any
	duplicates int
}

func newFakeOps(tabs ...Tab) *fakeOps {
	return &fakeOps{tabs: tabs, cells: make(map[string]map[int][]any)}
}

func (f *fakeOps) ListTabs(_ context.Context) ([]Tab, error) {
	out := make([]Tab, len(f.tabs))
	copy(out, f.tabs)
	return out, nil
}

func (f *fakeOps) DuplicateTab(_ context.Context, sourceID int64, title string) error {
	for _, tab := range f.tabs {
		if tab.ID == sourceID {
			f.duplicates++
			f.tabs = append(f.tabs, Tab{ID: int64(100 + len(f.tabs)), Title: title})
			return nil
		}
	}
	return fmt.Errorf("fake: no tab with id %d", sourceID)
}

func (f *fakeOps) ReadRange(_ context.Context, rng string) ([][]any, error) {
	tab, startCol, startRow, endCol, endRow, errParse := parseA1(rng)
	if errParse != nil {
		return nil, errParse
	}
	grid := f.cells[tab]
	if endRow == 0 {
		for row := range grid {
			if row > endRow {
				endRow = row
			}
		}
	}
	var out [][]any
	for row := startRow; row <= endRow; row++ {
		var cells []any
		for col := startCol; col <= endCol; col++ {
			line := grid[row]
			if col <= len(line) {
				cells = append(cells, line[col-1])
			}
		}
		out = append(out, cells)
	}
	// Trim trailing empty rows, as the live API does.
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeOps) WriteRange(_ context.Context, rng string, rows [][]any) error {
	tab, startCol, startRow, _, _, errParse := parseA1(rng)
	if errParse != nil {
		return errParse
	}
	grid := f.cells[tab]
	if grid == nil {
		grid = make(map[int][]any)
		f.cells[tab] = grid
	}
	for i, row := range rows {
		line := grid[startRow+i]
		for j, value := range row {
			col := startCol + j
			for len(line) < col {
				line = append(line, nil)
			}
			line[col-1] = value
		}
		grid[startRow+i] = line
	}
	return nil
}

// parseA1 parses the subset of A1 notation the mirror uses, e.g.
// "'Tab'!A6:A", "'Tab'!A2:H2", "'Tab'!C2". An open-ended range reports
// endRow 0.
func parseA1(rng string) (tab string, startCol, startRow, endCol, endRow int, err error) {
	bang := strings.LastIndex(rng, "!")
	if bang < 0 {
		return "", 0, 0, 0, 0, fmt.Errorf("fake: no tab in range %q", rng)
	}
	tab = strings.Trim(rng[:bang], "'")
	cellPart := rng[bang+1:]

	start, end, _ := strings.Cut(cellPart, ":")
	startCol, startRow, err = parseCellRef(start)
	if err != nil {
		return "", 0, 0, 0, 0, err
	}
	if end == "" {
		return tab, startCol, startRow, startCol, startRow, nil
	}
	endCol, endRow, err = parseCellRef(end)
	if err != nil {
		return "", 0, 0, 0, 0, err
	}
	return tab, startCol, startRow, endCol, endRow, nil
}

func parseCellRef(ref string) (col, row int, err error) {
	if ref == "" || ref[0] < 'A' || ref[0] > 'Z' {
		return 0, 0, fmt.Errorf("fake: bad cell ref %q", ref)
	}
	col = int(ref[0]-'A') + 1
	if len(ref) == 1 {
		return col, 0, nil
	}
	row, err = strconv.Atoi(ref[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("fake: bad cell ref %q", ref)
	}
	return col, row, nil
}

func TestEnsureUserTab_ClonesOnceAndReuses(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Template"})
	m := newMirror(fake, "Template")

	first, errFirst := m.EnsureUserTab(context.Background(), "A/B: Co*mpany")
	if errFirst != nil {
		t.Fatalf("first ensure: %v", errFirst)
	}
	if first != "A B Co mpany" {
		t.Fatalf("expected sanitized title, got %q", first)
	}
	if fake.duplicates != 1 {
		t.Fatalf("expected 1 clone, got %d", fake.duplicates)
	}

	second, errSecond := m.EnsureUserTab(context.Background(), "A/B: Co*mpany")
	if errSecond != nil {
		t.Fatalf("second ensure: %v", errSecond)
	}
	if second != first {
		t.Fatalf("expected %q on the second call, got %q", first, second)
	}
	if fake.duplicates != 1 {
		t.Fatalf("expected no clone on the second call, got %d", fake.duplicates)
	}
}

func TestEnsureUserTab_DisambiguatesCollision(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Template"})
	m := newMirror(fake, "Template")

	// A user named "Template" collides with the template tab itself.
	title, errEnsure := m.EnsureUserTab(context.Background(), "Template")
	if errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	if title != "Template (1)" {
		t.Fatalf("expected disambiguated title, got %q", title)
	}

	// The suffixed clone is found on the next call.
	again, errAgain := m.EnsureUserTab(context.Background(), "Template")
	if errAgain != nil {
		t.Fatalf("ensure again: %v", errAgain)
	}
	if again != "Template (1)" {
		t.Fatalf("expected %q, got %q", "Template (1)", again)
	}
	if fake.duplicates != 1 {
		t.Fatalf("expected a single clone, got %d", fake.duplicates)
	}
}

func TestEnsureUserTab_MissingTemplate(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Other"})
	m := newMirror(fake, "Template")
	if _, errEnsure := m.EnsureUserTab(context.Background(), "Ann"); errEnsure == nil {
		t.Fatalf("expected error when template tab is absent")
	}
}

func TestUpsertLedgerRow_AppendThenOverwrite(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Ann"})
	m := newMirror(fake, "Template")
	day := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)

	first := LedgerRow{Date: day, DailyBudget: 218, Foods: "Apple", Price: 6, Remaining: 212}
	if errUpsert := m.UpsertLedgerRow(context.Background(), "Ann", first); errUpsert != nil {
		t.Fatalf("first upsert: %v", errUpsert)
	}

	got, found, errRead := m.LedgerForDay(context.Background(), "Ann", day)
	if errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if !found {
		t.Fatalf("expected ledger row for day")
	}
	if got.Foods != "Apple" || got.Price != 6 || got.Remaining != 212 || got.DailyBudget != 218 {
		t.Fatalf("unexpected row %+v", got)
	}

	// Same day again: overwritten in place, no second row.
	second := LedgerRow{Date: day, DailyBudget: 218, Foods: "Apple, Bread", Price: 10, Remaining: 208}
	if errUpsert := m.UpsertLedgerRow(context.Background(), "Ann", second); errUpsert != nil {
		t.Fatalf("second upsert: %v", errUpsert)
	}
	got, _, errRead = m.LedgerForDay(context.Background(), "Ann", day)
	if errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if got.Foods != "Apple, Bread" || got.Price != 10 || got.Remaining != 208 {
		t.Fatalf("unexpected row after overwrite %+v", got)
	}
	if len(fake.cells["Ann"]) != 1 {
		t.Fatalf("expected a single ledger row, got %d", len(fake.cells["Ann"]))
	}

	// A different day lands on the next ledger row.
	nextDay := day.AddDate(0, 0, 1)
	third := LedgerRow{Date: nextDay, DailyBudget: 218, Foods: "Eggs", Price: 4, Remaining: 214}
	if errUpsert := m.UpsertLedgerRow(context.Background(), "Ann", third); errUpsert != nil {
		t.Fatalf("third upsert: %v", errUpsert)
	}
	if len(fake.cells["Ann"]) != 2 {
		t.Fatalf("expected two ledger rows, got %d", len(fake.cells["Ann"]))
	}
	if _, found, _ := m.LedgerForDay(context.Background(), "Ann", nextDay); !found {
		t.Fatalf("expected ledger row for the second day")
	}
}

func TestLedgerForDay_MatchesLegacySerialDates(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Ann"})
	m := newMirror(fake, "Template")

	// A legacy row written by the old spreadsheet flow: serial date cell.
	errSeed := fake.WriteRange(context.Background(), "'Ann'!A6:E6", [][]any{{
		float64(45000), 218, "Rice", 3.5, 214.5,
	}})
	if errSeed != nil {
		t.Fatalf("seed: %v", errSeed)
	}

	day := time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)
	got, found, errRead := m.LedgerForDay(context.Background(), "Ann", day)
	if errRead != nil {
		t.Fatalf("read: %v", errRead)
	}
	if !found {
		t.Fatalf("expected serial-dated row to match")
	}
	if got.Foods != "Rice" || got.Price != 3.5 || got.Remaining != 214.5 {
		t.Fatalf("unexpected row %+v", got)
	}
}

func TestWriteProfileAndWeight(t *testing.T) {
	fake := newFakeOps(Tab{ID: 1, Title: "Ann"})
	m := newMirror(fake, "Template")

	profile := ProfileRow{
		Name: "Ann", HeightCm: 170, StartWeightKg: 65, Gender: "female",
		Age: 28, TargetWeightKg: 60, TargetDate: "2024-06-01", DailyBudget: 155,
	}
	if errWrite := m.WriteProfile(context.Background(), "Ann", profile); errWrite != nil {
		t.Fatalf("write profile: %v", errWrite)
	}
	row := fake.cells["Ann"][2]
	if len(row) != 8 || row[0] != "Ann" || row[7] != 155 {
		t.Fatalf("unexpected general info row %v", row)
	}

	if errWeight := m.WriteWeight(context.Background(), "Ann", 64.2); errWeight != nil {
		t.Fatalf("write weight: %v", errWeight)
	}
	if fake.cells["Ann"][2][2] != 64.2 {
		t.Fatalf("expected weight cell updated, got %v", fake.cells["Ann"][2][2])
	}
}
