package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"foodbank-finder/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func entry(date, event, town, outreach string, served int) models.AttendanceEntry {
	return models.AttendanceEntry{
		Date:         date,
		EventName:    event,
		Town:         town,
		PeopleServed: served,
		OutreachName: outreach,
	}
}

func TestLogAttendance(t *testing.T) {
	database := testDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	e := entry("2026-08-30", "Piccadilly Outreach", "Manchester", "Sam", 85)
	if err := database.LogAttendance(&e, now); err != nil {
		t.Fatal(err)
	}
	if e.ID == "" {
		t.Error("expected assigned id")
	}
	if !e.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", e.CreatedAt, now)
	}

	entries, err := database.ListAttendance(models.AttendanceFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].PeopleServed != 85 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLogAttendanceDuplicate(t *testing.T) {
	database := testDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	first := entry("2026-08-30", "Piccadilly Outreach", "Manchester", "Sam", 85)
	if err := database.LogAttendance(&first, now); err != nil {
		t.Fatal(err)
	}

	dup := entry("2026-08-30", "Piccadilly Outreach", "Manchester", "Sam", 90)
	if err := database.LogAttendance(&dup, now); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}

	// Same event on another date is a new entry
	other := entry("2026-08-29", "Piccadilly Outreach", "Manchester", "Sam", 70)
	if err := database.LogAttendance(&other, now); err != nil {
		t.Errorf("different date rejected: %v", err)
	}
}

func TestLogAttendanceValidation(t *testing.T) {
	database := testDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		e    models.AttendanceEntry
	}{
		{"missing event", entry("2026-08-30", "", "Manchester", "Sam", 10)},
		{"missing town", entry("2026-08-30", "Outreach", "", "Sam", 10)},
		{"missing outreach name", entry("2026-08-30", "Outreach", "Manchester", "", 10)},
		{"negative served", entry("2026-08-30", "Outreach", "Manchester", "Sam", -1)},
		{"served above cap", entry("2026-08-30", "Outreach", "Manchester", "Sam", 501)},
		{"bad date", entry("30/08/2026", "Outreach", "Manchester", "Sam", 10)},
		{"future date", entry("2026-09-01", "Outreach", "Manchester", "Sam", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.e
			if err := database.LogAttendance(&e, now); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	// Today itself is fine
	today := entry("2026-08-31", "Outreach", "Manchester", "Sam", 500)
	if err := database.LogAttendance(&today, now); err != nil {
		t.Errorf("today rejected: %v", err)
	}
}

func TestListAttendanceFilters(t *testing.T) {
	database := testDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	seed := []models.AttendanceEntry{
		entry("2026-08-28", "Event A", "Manchester", "Sam", 10),
		entry("2026-08-29", "Event B", "Bolton", "Sam", 20),
		entry("2026-08-30", "Event C", "Manchester", "Alex", 30),
	}
	for i := range seed {
		if err := database.LogAttendance(&seed[i], now); err != nil {
			t.Fatal(err)
		}
	}

	got, err := database.ListAttendance(models.AttendanceFilter{Town: "manchester"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("town filter: expected 2, got %d", len(got))
	}
	// Newest date first
	if got[0].EventName != "Event C" {
		t.Errorf("expected Event C first, got %q", got[0].EventName)
	}

	got, err = database.ListAttendance(models.AttendanceFilter{From: "2026-08-29", To: "2026-08-29"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Town != "Bolton" {
		t.Errorf("date range filter: %+v", got)
	}

	got, err = database.ListAttendance(models.AttendanceFilter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("limit: expected 1, got %d", len(got))
	}
}

func TestAttendanceStats(t *testing.T) {
	database := testDB(t)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	seed := []models.AttendanceEntry{
		entry("2026-08-28", "Event A", "Manchester", "Sam", 10),
		entry("2026-08-29", "Event B", "Bolton", "Sam", 50),
		entry("2026-08-30", "Event C", "Manchester", "Alex", 30),
	}
	for i := range seed {
		if err := database.LogAttendance(&seed[i], now); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := database.AttendanceStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 3 || stats.TotalServed != 90 {
		t.Errorf("totals: entries=%d served=%d", stats.TotalEntries, stats.TotalServed)
	}
	if len(stats.ByTown) != 2 {
		t.Fatalf("expected 2 towns, got %d", len(stats.ByTown))
	}
	// Ordered by people served descending
	if stats.ByTown[0].Town != "Bolton" || stats.ByTown[0].PeopleServed != 50 {
		t.Errorf("top town: %+v", stats.ByTown[0])
	}
	if stats.ByTown[1].Town != "Manchester" || stats.ByTown[1].PeopleServed != 40 {
		t.Errorf("second town: %+v", stats.ByTown[1])
	}
}

func TestStatsOnEmptyDatabase(t *testing.T) {
	stats, err := testDB(t).AttendanceStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEntries != 0 || stats.TotalServed != 0 || len(stats.ByTown) != 0 {
		t.Errorf("empty db stats: %+v", stats)
	}
}
