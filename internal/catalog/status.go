package catalog

import (
	"fmt"
	"time"

	"foodbank-finder/internal/models"
)

// openingSoonWindow is how far ahead of opening time a closed location is
// reported as opening-soon.
const openingSoonWindow = 120 // minutes

// ComputeStatus derives the open/closed state of a location at the given
// time. It is a pure function of (location, now): no clocks are read and
// nothing is mutated.
func ComputeStatus(loc *models.Location, now time.Time) (models.Status, string) {
	openToday := loc.Days.On(now.Weekday())

	if !openToday || loc.OpeningTime == "" || loc.ClosingTime == "" {
		return models.StatusClosed, nextOpening(loc, now)
	}

	current := now.Hour()*60 + now.Minute()
	open := minutesOfDay(loc.OpeningTime)
	close := minutesOfDay(loc.ClosingTime)

	if current >= open && current < close {
		return models.StatusOpen, ""
	}

	if until := open - current; until > 0 && until <= openingSoonWindow {
		return models.StatusOpeningSoon, formatTimeUntil(until)
	}

	return models.StatusClosed, nextOpening(loc, now)
}

// nextOpening scans the next 7 days for the first qualifying opening.
// Day offset 0 only qualifies while today's opening time is still ahead.
func nextOpening(loc *models.Location, now time.Time) string {
	if loc.OpeningTime == "" {
		return "Check opening times"
	}

	for i := 0; i < 7; i++ {
		day := now.AddDate(0, 0, i).Weekday()
		if !loc.Days.On(day) {
			continue
		}
		if i == 0 {
			current := now.Hour()*60 + now.Minute()
			if current < minutesOfDay(loc.OpeningTime) {
				return fmt.Sprintf("Today at %s", loc.OpeningTime)
			}
			continue
		}
		return fmt.Sprintf("%s at %s", day.String(), loc.OpeningTime)
	}

	return "Check opening times"
}

func formatTimeUntil(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60
	if hours > 0 {
		return fmt.Sprintf("Opens in %dh %dm", hours, mins)
	}
	return fmt.Sprintf("Opens in %dm", mins)
}

// statusRank orders statuses by urgency for the opening-soon sort.
func statusRank(s models.Status) int {
	switch s {
	case models.StatusOpen:
		return 1
	case models.StatusOpeningSoon:
		return 2
	case models.StatusClosed:
		return 3
	}
	return 4
}
