package models

import "time"

// AttendanceEntry is one logged feeding session.
type AttendanceEntry struct {
	ID           string    `db:"id" json:"id"`
	Date         string    `db:"date" json:"date"` // YYYY-MM-DD
	EventName    string    `db:"event_name" json:"event_name"`
	Town         string    `db:"town" json:"town"`
	PeopleServed int       `db:"people_served" json:"people_served"`
	OutreachName string    `db:"outreach_name" json:"outreach_name"`
	Notes        string    `db:"notes" json:"notes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	From  string // YYYY-MM-DD, inclusive
	To    string // YYYY-MM-DD, inclusive
	Town  string
	Limit int
}

// TownStats is the per-town attendance breakdown.
type TownStats struct {
	Town         string `db:"town" json:"town"`
	Entries      int    `db:"entries" json:"entries"`
	PeopleServed int    `db:"people_served" json:"people_served"`
}

// AttendanceStats summarizes logged attendance.
type AttendanceStats struct {
	TotalEntries int         `json:"total_entries"`
	TotalServed  int         `json:"total_served"`
	ByTown       []TownStats `json:"by_town"`
}
