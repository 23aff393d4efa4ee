package models

import "time"

// Status is the derived open/closed state of a location at a point in time.
type Status string

const (
	StatusOpen        Status = "open"
	StatusOpeningSoon Status = "opening-soon"
	StatusClosed      Status = "closed"
)

// AccessType is the canonical access vocabulary. Source data uses several
// spellings ("Referral", "Referral Only", "Walk-in & Referral"); everything
// is normalized onto these four values at load time.
type AccessType string

const (
	AccessWalkIn       AccessType = "walk-in"
	AccessReferralOnly AccessType = "referral-only"
	AccessBoth         AccessType = "both"
	AccessUnknown      AccessType = "unknown"
)

// DayFilter selects records by weekday availability.
type DayFilter string

const (
	DayAll      DayFilter = "all"
	DayToday    DayFilter = "today"
	DayTomorrow DayFilter = "tomorrow"
	DayWeekday  DayFilter = "weekday"
	DayWeekend  DayFilter = "weekend"
)

// QuickFilter is a named composite predicate for common use-cases.
type QuickFilter string

const (
	QuickAll      QuickFilter = "all"
	QuickOpenNow  QuickFilter = "open-now"
	QuickFreeOnly QuickFilter = "free-only"
	QuickWalkIn   QuickFilter = "walk-in"
	QuickDelivery QuickFilter = "delivery"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortDistance    SortKey = "distance"
	SortName        SortKey = "name"
	SortOpeningSoon SortKey = "opening-soon"
	SortBorough     SortKey = "borough"
)

// ServiceKey identifies one of the fixed service capability flags.
type ServiceKey string

const (
	ServiceFoodBank  ServiceKey = "foodbank"
	ServiceMeals     ServiceKey = "meals"
	ServiceDelivery  ServiceKey = "delivery"
	ServiceClothing  ServiceKey = "clothing"
	ServiceFurniture ServiceKey = "furniture"
	ServiceUtilities ServiceKey = "utilities"
)

// WeekDays holds the per-weekday open flags.
type WeekDays struct {
	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`
}

// On reports whether the location is flagged open on the given weekday.
func (w WeekDays) On(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}
	return false
}

// AnyWeekday reports whether any of Monday through Friday is flagged.
func (w WeekDays) AnyWeekday() bool {
	return w.Monday || w.Tuesday || w.Wednesday || w.Thursday || w.Friday
}

// AnyWeekend reports whether Saturday or Sunday is flagged.
func (w WeekDays) AnyWeekend() bool {
	return w.Saturday || w.Sunday
}

// ServiceFlags holds the fixed set of capability flags.
type ServiceFlags struct {
	FoodBank  bool `json:"foodbank"`
	Meals     bool `json:"meals"`
	Delivery  bool `json:"delivery"`
	Clothing  bool `json:"clothing"`
	Furniture bool `json:"furniture"`
	Utilities bool `json:"utilities"`
}

// Has reports whether the given service capability is flagged. Unknown keys
// report false.
func (s ServiceFlags) Has(key ServiceKey) bool {
	switch key {
	case ServiceFoodBank:
		return s.FoodBank
	case ServiceMeals:
		return s.Meals
	case ServiceDelivery:
		return s.Delivery
	case ServiceClothing:
		return s.Clothing
	case ServiceFurniture:
		return s.Furniture
	case ServiceUtilities:
		return s.Utilities
	}
	return false
}

// Location is one physical service location. Name, Latitude and Longitude
// are guaranteed present; every other field may be empty.
type Location struct {
	ID            string `json:"id"`
	Region        string `json:"region"`
	Name          string `json:"name"`
	Borough       string `json:"borough"`
	Area          string `json:"area"`
	FullAddress   string `json:"full_address"`
	Postcode      string `json:"postcode"`
	OpeningTimes  string `json:"opening_times"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	Requirements  string `json:"requirements"`
	Cost          string `json:"cost"`
	Services      string `json:"services"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`

	Days WeekDays `json:"days"`

	// Shared across all open days; empty string means unknown.
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	TimeNotes   string `json:"time_notes"`

	ServiceFlags ServiceFlags `json:"service_flags"`
	AccessType   AccessType   `json:"access_type"`

	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`

	HasCompleteInfo  bool   `json:"has_complete_info"`
	LastUpdated      string `json:"last_updated"`
	CoordinateSource string `json:"coordinate_source"`

	// Derived fields, recomputed on demand and never persisted.
	Status      Status   `json:"status"`
	NextOpening string   `json:"next_opening,omitempty"`
	Distance    *float64 `json:"distance_miles,omitempty"`
}

// Position is an optional user coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FilterState holds the current view parameters for a catalog.
type FilterState struct {
	Search  string      `json:"search"`
	Borough string      `json:"borough"`
	Day     DayFilter   `json:"day"`
	Service ServiceKey  `json:"service"`
	Quick   QuickFilter `json:"quick_filter"`
	Sort    SortKey     `json:"sort_by"`
}

// DefaultFilters returns the filter state a catalog starts with.
func DefaultFilters() FilterState {
	return FilterState{
		Search:  "",
		Borough: "all",
		Day:     DayAll,
		Service: "all",
		Quick:   QuickAll,
		Sort:    SortDistance,
	}
}

// DayHours is one row of a weekly opening-hours table.
type DayHours struct {
	Day   string `json:"day"`
	Open  bool   `json:"open"`
	Times string `json:"times"`
}

// DisplayRecord is the presenter-facing view of a location: every
// normalized field plus derived status, formatted labels and fallbacks.
type DisplayRecord struct {
	Location
	StatusLabel string     `json:"status_label"`
	AccessLabel string     `json:"access_label"`
	CostLabel   string     `json:"cost_label"`
	WeeklyHours []DayHours `json:"weekly_hours,omitempty"`
}

// StatusLabelFor returns the display text for a status.
func StatusLabelFor(s Status) string {
	switch s {
	case StatusOpen:
		return "Open Now"
	case StatusOpeningSoon:
		return "Opens Soon"
	default:
		return "Closed"
	}
}

// AccessLabelFor returns the display text for an access type.
func AccessLabelFor(a AccessType) string {
	switch a {
	case AccessWalkIn:
		return "Walk-in"
	case AccessReferralOnly:
		return "Referral Required"
	case AccessBoth:
		return "Walk-in & Referral"
	default:
		return "Contact for access"
	}
}

// CostLabelFor returns the display text for a cost field, with the
// defined fallback when the source had nothing.
func CostLabelFor(cost string) string {
	if cost == "" {
		return "Contact for details"
	}
	return cost
}
