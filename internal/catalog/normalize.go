package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"foodbank-finder/internal/models"
	"foodbank-finder/internal/source"
)

// Normalize converts raw dataset rows into Location records. A row is
// either fully adopted or excluded: rows without a name or with
// unparseable coordinates are dropped, and the dropped count returned.
// Record IDs derive from the region tag plus the source row position.
func Normalize(region string, rows []source.Row) ([]models.Location, int) {
	out := make([]models.Location, 0, len(rows))
	dropped := 0

	for i, row := range rows {
		loc := models.Location{
			ID:            fmt.Sprintf("%s_%d", region, i),
			Region:        region,
			Name:          cleanText(row["Name"]),
			Borough:       cleanText(row["Borough"]),
			Area:          cleanText(row["Area"]),
			FullAddress:   cleanText(row["Full_Address"]),
			Postcode:      cleanText(row["Postcode"]),
			OpeningTimes:  cleanText(row["Opening_Times"]),
			Phone:         formatPhone(row["Phone"]),
			Email:         cleanText(row["Email"]),
			Website:       cleanText(row["Website"]),
			Requirements:  cleanText(row["Requirements"]),
			Cost:          cleanText(row["Cost"]),
			Services:      cleanText(row["Services"]),
			ContactPerson: cleanText(row["Contact_Person"]),
			Notes:         cleanText(row["Notes"]),

			Days: models.WeekDays{
				Monday:    parseBool(row["Monday"]),
				Tuesday:   parseBool(row["Tuesday"]),
				Wednesday: parseBool(row["Wednesday"]),
				Thursday:  parseBool(row["Thursday"]),
				Friday:    parseBool(row["Friday"]),
				Saturday:  parseBool(row["Saturday"]),
				Sunday:    parseBool(row["Sunday"]),
			},

			OpeningTime: parseTime(row["Opening_Time"]),
			ClosingTime: parseTime(row["Closing_Time"]),
			TimeNotes:   cleanText(row["Time_Notes"]),

			ServiceFlags: models.ServiceFlags{
				FoodBank:  parseBool(row["Service_FoodBank"]),
				Meals:     parseBool(row["Service_CommunityMeals"]),
				Delivery:  parseBool(row["Service_Delivery"]),
				Clothing:  parseBool(row["Service_Clothing"]),
				Furniture: parseBool(row["Service_Furniture"]),
				Utilities: parseBool(row["Service_Utilities"]),
			},

			AccessType: normalizeAccessType(row["Access_Type"]),

			HasCompleteInfo:  parseBool(row["Has_Complete_Info"]),
			LastUpdated:      cleanText(row["Last_Updated"]),
			CoordinateSource: cleanText(row["Coordinate_Source"]),

			Status: models.StatusClosed,
		}

		lat, latOK := parseCoordinate(row["Latitude"])
		lng, lngOK := parseCoordinate(row["Longitude"])
		if loc.Name == "" || !latOK || !lngOK {
			dropped++
			continue
		}
		loc.Latitude = lat
		loc.Longitude = lng

		out = append(out, loc)
	}

	return out, dropped
}

// cleanText trims a field and collapses the literal "null"/"undefined"
// artifacts to empty.
func cleanText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "null" || trimmed == "undefined" {
		return ""
	}
	return trimmed
}

// parseBool maps the fixed truthy vocabulary to true; everything else,
// including absent values, is false.
func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}

// formatPhone strips everything but digits, "+" and whitespace, then
// reformats 11-digit UK national numbers as "XXXX XXX XXXX".
func formatPhone(phone string) string {
	phone = cleanText(phone)
	if phone == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range phone {
		if r == '+' || r == ' ' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	if len(cleaned) == 11 && cleaned[0] == '0' && allDigits(cleaned) {
		return cleaned[:4] + " " + cleaned[4:7] + " " + cleaned[7:]
	}
	return cleaned
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseTime accepts H:MM, HH:MM or HH:MM:SS and keeps the hour:minute
// prefix. Anything else normalizes to empty, never a guessed default.
func parseTime(raw string) string {
	t := cleanText(raw)
	if t == "" {
		return ""
	}

	parts := strings.Split(t, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return ""
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return ""
	}
	for _, p := range parts {
		if !allDigits(p) {
			return ""
		}
	}
	if len(parts) == 3 && len(parts[2]) != 2 {
		return ""
	}

	return parts[0] + ":" + parts[1]
}

// normalizeAccessType maps source spellings onto the canonical vocabulary.
// "referral" and "referral only" are synonyms for referral-only.
func normalizeAccessType(raw string) models.AccessType {
	switch strings.ToLower(cleanText(raw)) {
	case "", "unknown":
		return models.AccessUnknown
	case "walk-in", "walk in", "walkin":
		return models.AccessWalkIn
	case "referral", "referral only", "referral-only":
		return models.AccessReferralOnly
	case "both", "walk-in & referral", "walk-in and referral":
		return models.AccessBoth
	}
	return models.AccessUnknown
}

// parseCoordinate parses a latitude/longitude field; non-finite values
// invalidate the row.
func parseCoordinate(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// minutesOfDay converts a normalized "HH:MM" value to minutes since
// midnight. Returns -1 for empty or malformed values.
func minutesOfDay(hhmm string) int {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return -1
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return -1
	}
	return h*60 + m
}
