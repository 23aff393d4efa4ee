package catalog

import (
	"sort"
	"strings"
	"time"

	"foodbank-finder/internal/models"
)

// distanceSentinel sorts records without a computed distance after every
// record that has one.
const distanceSentinel = 999.0

// runPipeline applies the full filter -> sort chain to records and
// returns the filtered, ordered list. The stages run in a fixed order:
// search, borough, day, service, quick filter, sort. Unknown filter and
// sort values pass records through rather than erroring, so stale UI
// state degrades to "all".
func runPipeline(records []models.Location, f models.FilterState, now time.Time, hasPosition bool) []models.Location {
	filtered := make([]models.Location, 0, len(records))
	for _, loc := range records {
		if matchesSearch(loc, f.Search) &&
			matchesBorough(loc, f.Borough) &&
			matchesDay(loc, f.Day, now) &&
			matchesService(loc, f.Service) &&
			matchesQuick(loc, f.Quick) {
			filtered = append(filtered, loc)
		}
	}

	sortRecords(filtered, f.Sort, hasPosition)
	return filtered
}

// matchesSearch is a case-insensitive substring match across name,
// address, postcode, borough and area. Empty search passes everything.
func matchesSearch(loc models.Location, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(loc.Name), needle) ||
		strings.Contains(strings.ToLower(loc.FullAddress), needle) ||
		strings.Contains(strings.ToLower(loc.Postcode), needle) ||
		strings.Contains(strings.ToLower(loc.Borough), needle) ||
		strings.Contains(strings.ToLower(loc.Area), needle)
}

func matchesBorough(loc models.Location, borough string) bool {
	if borough == "" || borough == "all" {
		return true
	}
	return strings.EqualFold(loc.Borough, borough)
}

func matchesDay(loc models.Location, day models.DayFilter, now time.Time) bool {
	switch day {
	case models.DayToday:
		return loc.Days.On(now.Weekday())
	case models.DayTomorrow:
		return loc.Days.On(now.AddDate(0, 0, 1).Weekday())
	case models.DayWeekday:
		return loc.Days.AnyWeekday()
	case models.DayWeekend:
		return loc.Days.AnyWeekend()
	}
	return true
}

func matchesService(loc models.Location, service models.ServiceKey) bool {
	switch service {
	case models.ServiceFoodBank, models.ServiceMeals, models.ServiceDelivery,
		models.ServiceClothing, models.ServiceFurniture, models.ServiceUtilities:
		return loc.ServiceFlags.Has(service)
	}
	return true
}

func matchesQuick(loc models.Location, quick models.QuickFilter) bool {
	switch quick {
	case models.QuickOpenNow:
		return loc.Status == models.StatusOpen
	case models.QuickFreeOnly:
		return strings.Contains(strings.ToLower(loc.Cost), "free")
	case models.QuickWalkIn:
		// Referral-only is the only access type excluded.
		return loc.AccessType != models.AccessReferralOnly
	case models.QuickDelivery:
		return loc.ServiceFlags.Delivery
	}
	return true
}

// sortRecords orders records in place. Sorting is stable with name
// ascending as the secondary key. Distance sort degrades to name sort
// when no user position has been acquired.
func sortRecords(records []models.Location, key models.SortKey, hasPosition bool) {
	byName := func(a, b models.Location) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}

	switch key {
	case models.SortDistance:
		if !hasPosition {
			sort.SliceStable(records, func(i, j int) bool {
				return byName(records[i], records[j])
			})
			return
		}
		sort.SliceStable(records, func(i, j int) bool {
			di, dj := distanceOrSentinel(records[i]), distanceOrSentinel(records[j])
			if di != dj {
				return di < dj
			}
			return byName(records[i], records[j])
		})
	case models.SortName:
		sort.SliceStable(records, func(i, j int) bool {
			return byName(records[i], records[j])
		})
	case models.SortOpeningSoon:
		sort.SliceStable(records, func(i, j int) bool {
			ri, rj := statusRank(records[i].Status), statusRank(records[j].Status)
			if ri != rj {
				return ri < rj
			}
			return byName(records[i], records[j])
		})
	case models.SortBorough:
		sort.SliceStable(records, func(i, j int) bool {
			bi, bj := strings.ToLower(records[i].Borough), strings.ToLower(records[j].Borough)
			if bi != bj {
				return bi < bj
			}
			return byName(records[i], records[j])
		})
	}
}

func distanceOrSentinel(loc models.Location) float64 {
	if loc.Distance == nil {
		return distanceSentinel
	}
	return *loc.Distance
}
