package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dubytrack/dubytrack/internal/db"
	"github.com/dubytrack/dubytrack/internal/models"
	"github.com/dubytrack/dubytrack/internal/sheets"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func TestNextWeighIn(t *testing.T) {
	cases := []struct {
		now  string
		want string
	}{
		{"2026-08-24", "2026-08-28"}, // Monday to Friday
		{"2026-08-27", "2026-08-28"}, // Thursday to Friday
		{"2026-08-28", "2026-09-04"}, // Friday skips to next Friday
		{"2026-08-29", "2026-09-04"}, // Saturday to next Friday
	}
	for _, tc := range cases {
		now, errParse := time.Parse("2006-01-02", tc.now)
		if errParse != nil {
			t.Fatalf("parse %s: %v", tc.now, errParse)
		}
		got := nextWeighIn(now).Format("2006-01-02")
		if got != tc.want {
			t.Fatalf("nextWeighIn(%s): got %s, want %s", tc.now, got, tc.want)
		}
	}
}

func TestDayRange(t *testing.T) {
	at := time.Date(2026, 8, 30, 17, 45, 12, 0, time.UTC)
	start, end := dayRange(at)
	if !start.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start: got %v", start)
	}
	if !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end: got %v", end)
	}
}

func TestLogPrice(t *testing.T) {
	entry := models.FoodLog{Portion: 3, DubyCost: 2}
	if price := logPrice(entry); price != 6 {
		t.Fatalf("price: got %v, want 6", price)
	}
}

// stubMirror satisfies Mirror with canned ledger responses.
type stubMirror struct {
	row     sheets.LedgerRow
	found   bool
	readErr error
}

func (s *stubMirror) EnsureUserTab(ctx context.Context, displayName string) (string, error) {
	return sheets.SanitizeTabTitle(displayName), nil
}

func (s *stubMirror) WriteProfile(ctx context.Context, tab string, row sheets.ProfileRow) error {
	return nil
}

func (s *stubMirror) WriteWeight(ctx context.Context, tab string, weightKg float64) error {
	return nil
}

func (s *stubMirror) UpsertLedgerRow(ctx context.Context, tab string, entry sheets.LedgerRow) error {
	return nil
}

func (s *stubMirror) LedgerForDay(ctx context.Context, tab string, day time.Time) (sheets.LedgerRow, bool, error) {
	return s.row, s.found, s.readErr
}

// seedDashboardUser creates a user with a 100 duby budget and one entry
// costing 10 logged today.
func seedDashboardUser(t *testing.T) (*gorm.DB, uint64) {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "dashboard-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Name: "Dan", Email: "dan@example.com", Password: "x"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	profile := models.Profile{UserID: user.ID, DailyBudget: 100}
	if errCreate := conn.Create(&profile).Error; errCreate != nil {
		t.Fatalf("create profile: %v", errCreate)
	}
	item := models.FoodItem{Name: "Bread", Duby: 10}
	if errCreate := conn.Create(&item).Error; errCreate != nil {
		t.Fatalf("create item: %v", errCreate)
	}
	entry := models.FoodLog{
		UserID:     user.ID,
		FoodItemID: item.ID,
		Portion:    1,
		DubyCost:   10,
		OccurredAt: time.Now().UTC(),
	}
	if errCreate := conn.Create(&entry).Error; errCreate != nil {
		t.Fatalf("create log: %v", errCreate)
	}
	return conn, user.ID
}

// serveDashboard runs Today with the session already resolved.
func serveDashboard(t *testing.T, handler *DashboardHandler, userID uint64) map[string]any {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.GET("/dashboard", func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		handler.Today(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: got %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	return body
}

func TestDashboardRemainingFromLedger(t *testing.T) {
	conn, userID := seedDashboardUser(t)

	mirror := &stubMirror{
		row:   sheets.LedgerRow{DailyBudget: 100, Price: 10, Remaining: 42.5},
		found: true,
	}
	handler := NewDashboardHandler(conn, mirror, true)

	body := serveDashboard(t, handler, userID)
	if got := body["remainingDubyToday"]; got != 42.5 {
		t.Fatalf("remaining: got %v, want 42.5 from the ledger", got)
	}
	// The relational figures still drive the rest of the view.
	if got := body["total"]; got != 10.0 {
		t.Fatalf("total: got %v, want 10", got)
	}
}

func TestDashboardLedgerRowAbsent(t *testing.T) {
	conn, userID := seedDashboardUser(t)

	handler := NewDashboardHandler(conn, &stubMirror{found: false}, true)

	body := serveDashboard(t, handler, userID)
	if got := body["remainingDubyToday"]; got != 90.0 {
		t.Fatalf("remaining: got %v, want 90", got)
	}
}

func TestDashboardLedgerReadErrorFallsBack(t *testing.T) {
	conn, userID := seedDashboardUser(t)

	mirror := &stubMirror{readErr: errors.New("quota exceeded")}
	handler := NewDashboardHandler(conn, mirror, true)

	body := serveDashboard(t, handler, userID)
	if got := body["remainingDubyToday"]; got != 90.0 {
		t.Fatalf("remaining: got %v, want 90 after a failed ledger read", got)
	}
}

func TestDashboardLedgerReadsDisabled(t *testing.T) {
	conn, userID := seedDashboardUser(t)

	// Even with a ledger row available the flag keeps reads relational.
	mirror := &stubMirror{
		row:   sheets.LedgerRow{Remaining: 42.5},
		found: true,
	}
	handler := NewDashboardHandler(conn, mirror, false)

	body := serveDashboard(t, handler, userID)
	if got := body["remainingDubyToday"]; got != 90.0 {
		t.Fatalf("remaining: got %v, want 90", got)
	}
}
