package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodbank-finder/internal/models"
)

// ErrDuplicateEntry is returned when the same volunteer logs the same
// event, town and date twice.
var ErrDuplicateEntry = errors.New("attendance already logged for this event")

const maxPeopleServed = 500

// LogAttendance validates and stores one attendance entry. The entry's
// ID and CreatedAt are assigned here.
func (db *DB) LogAttendance(entry *models.AttendanceEntry, now time.Time) error {
	if entry.Date == "" || entry.EventName == "" || entry.Town == "" || entry.OutreachName == "" {
		return fmt.Errorf("missing required fields")
	}
	if entry.PeopleServed < 0 || entry.PeopleServed > maxPeopleServed {
		return fmt.Errorf("people served must be between 0 and %d", maxPeopleServed)
	}

	date, err := time.Parse("2006-01-02", entry.Date)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	endOfToday := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
	if date.After(endOfToday) {
		return fmt.Errorf("cannot log attendance for future dates")
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = now

	_, err = db.NamedExec(`
		INSERT INTO attendance (id, date, event_name, town, people_served, outreach_name, notes, created_at)
		VALUES (:id, :date, :event_name, :town, :people_served, :outreach_name, :notes, :created_at)
	`, entry)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to log attendance: %w", err)
	}

	return nil
}

// ListAttendance returns entries matching the filter, newest date first.
func (db *DB) ListAttendance(f models.AttendanceFilter) ([]models.AttendanceEntry, error) {
	query := `
		SELECT id, date, event_name, town, people_served, outreach_name, notes, created_at
		FROM attendance
		WHERE 1=1
	`
	args := make([]interface{}, 0)

	if f.From != "" {
		query += " AND date >= ?"
		args = append(args, f.From)
	}
	if f.To != "" {
		query += " AND date <= ?"
		args = append(args, f.To)
	}
	if f.Town != "" {
		query += " AND LOWER(town) = LOWER(?)"
		args = append(args, f.Town)
	}

	query += " ORDER BY date DESC, created_at DESC"

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var entries []models.AttendanceEntry
	if err := db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return entries, nil
}

// AttendanceStats aggregates entry counts and people served, overall and
// per town.
func (db *DB) AttendanceStats() (*models.AttendanceStats, error) {
	stats := &models.AttendanceStats{}

	var totals struct {
		Entries int           `db:"entries"`
		Served  sql.NullInt64 `db:"served"`
	}
	err := db.Get(&totals, "SELECT COUNT(*) AS entries, SUM(people_served) AS served FROM attendance")
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	stats.TotalEntries = totals.Entries
	stats.TotalServed = int(totals.Served.Int64)

	err = db.Select(&stats.ByTown, `
		SELECT town, COUNT(*) AS entries, SUM(people_served) AS people_served
		FROM attendance
		GROUP BY town
		ORDER BY people_served DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute town stats: %w", err)
	}

	return stats, nil
}
