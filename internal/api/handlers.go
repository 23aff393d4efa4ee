package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"foodbank-finder/internal/catalog"
	"foodbank-finder/internal/db"
	"foodbank-finder/internal/models"
	"foodbank-finder/internal/position"
)

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	catalog  *catalog.Catalog
	store    *db.DB
	provider position.Provider
	log      *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(cat *catalog.Catalog, store *db.DB, provider position.Provider, log *zap.Logger) *Handlers {
	return &Handlers{catalog: cat, store: store, provider: provider, log: log}
}

// ListLocations handles GET /api/locations
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// GetLocation handles GET /api/locations/{id}
func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := h.catalog.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "location not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// LoadMore handles POST /api/locations/more
func (h *Handlers) LoadMore(w http.ResponseWriter, r *http.Request) {
	h.catalog.LoadMore()
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// filterIntent carries the optional filter fields of a filter update;
// absent fields leave the corresponding filter untouched.
type filterIntent struct {
	Search  *string `json:"search"`
	Borough *string `json:"borough"`
	Day     *string `json:"day"`
	Service *string `json:"service"`
	Quick   *string `json:"quick_filter"`
	Sort    *string `json:"sort_by"`
}

// SetFilters handles POST /api/filters
func (h *Handlers) SetFilters(w http.ResponseWriter, r *http.Request) {
	var intent filterIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter payload")
		return
	}

	if intent.Search != nil {
		h.catalog.SetSearch(*intent.Search)
	}
	if intent.Borough != nil {
		h.catalog.SetBoroughFilter(*intent.Borough)
	}
	if intent.Day != nil {
		h.catalog.SetDayFilter(models.DayFilter(*intent.Day))
	}
	if intent.Service != nil {
		h.catalog.SetServiceFilter(models.ServiceKey(*intent.Service))
	}
	if intent.Quick != nil {
		h.catalog.SetQuickFilter(models.QuickFilter(*intent.Quick))
	}
	if intent.Sort != nil {
		h.catalog.SetSort(models.SortKey(*intent.Sort))
	}

	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// ClearFilters handles POST /api/filters/clear
func (h *Handlers) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.catalog.ClearAllFilters()
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// FilterOptions handles GET /api/filters/options
func (h *Handlers) FilterOptions(w http.ResponseWriter, r *http.Request) {
	regions := h.catalog.Datasets()
	regionList := make([]map[string]string, 0, len(regions))
	for _, reg := range regions {
		regionList = append(regionList, map[string]string{"id": reg.ID, "label": reg.Label})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"boroughs":      h.catalog.Boroughs(),
		"regions":       regionList,
		"days":          []models.DayFilter{models.DayAll, models.DayToday, models.DayTomorrow, models.DayWeekday, models.DayWeekend},
		"services":      []models.ServiceKey{models.ServiceFoodBank, models.ServiceMeals, models.ServiceDelivery, models.ServiceClothing, models.ServiceFurniture, models.ServiceUtilities},
		"quick_filters": []models.QuickFilter{models.QuickAll, models.QuickOpenNow, models.QuickFreeOnly, models.QuickWalkIn, models.QuickDelivery},
		"sort_keys":     []models.SortKey{models.SortDistance, models.SortName, models.SortOpeningSoon, models.SortBorough},
	})
}

// SwitchRegion handles POST /api/regions/{id}
func (h *Handlers) SwitchRegion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.catalog.SwitchDataset(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.catalog.Snapshot())
	case errors.Is(err, catalog.ErrUnknownRegion):
		writeError(w, http.StatusNotFound, "unknown region")
	case errors.Is(err, catalog.ErrSuperseded):
		writeError(w, http.StatusConflict, "request superseded by a newer region switch")
	default:
		h.log.Error("region load failed", zap.String("region", id), zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"error":     "Failed to load food bank data",
			"retryable": true,
		})
	}
}

// positionIntent carries either an explicit coordinate or a place query
// to geocode.
type positionIntent struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Query string   `json:"query"`
}

// RequestPosition handles POST /api/position. A position failure leaves
// the catalog's sort and filter state untouched; the response carries
// the failure code and an auto-dismiss hint for the presenter.
func (h *Handlers) RequestPosition(w http.ResponseWriter, r *http.Request) {
	var intent positionIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		writeError(w, http.StatusBadRequest, "invalid position payload")
		return
	}

	var pos models.Position
	switch {
	case intent.Lat != nil && intent.Lng != nil:
		pos = models.Position{Lat: *intent.Lat, Lng: *intent.Lng}
	case intent.Query != "":
		resolved, err := h.provider.Request(r.Context(), intent.Query)
		if err != nil {
			code := position.CodeOf(err)
			h.log.Warn("position request failed", zap.String("code", string(code)), zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error":           position.Message(code),
				"code":            code,
				"auto_dismiss_ms": 5000,
			})
			return
		}
		pos = resolved
	default:
		writeError(w, http.StatusBadRequest, "position requires lat/lng or a query")
		return
	}

	h.catalog.SetPosition(pos)
	writeJSON(w, http.StatusOK, h.catalog.Snapshot())
}

// LogAttendance handles POST /api/attendance
func (h *Handlers) LogAttendance(w http.ResponseWriter, r *http.Request) {
	var entry models.AttendanceEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid attendance payload")
		return
	}

	err := h.store.LogAttendance(&entry, time.Now())
	switch {
	case err == nil:
		h.log.Info("attendance logged",
			zap.String("event", entry.EventName),
			zap.String("town", entry.Town),
			zap.Int("people_served", entry.PeopleServed))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Attendance logged successfully",
			"data":    entry,
		})
	case errors.Is(err, db.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

// ListAttendance handles GET /api/attendance
func (h *Handlers) ListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.AttendanceFilter{
		From: q.Get("from"),
		To:   q.Get("to"),
		Town: q.Get("town"),
	}
	if v := q.Get("limit"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			filter.Limit = val
		}
	}

	entries, err := h.store.ListAttendance(filter)
	if err != nil {
		h.log.Error("attendance list failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// AttendanceStats handles GET /api/attendance/stats
func (h *Handlers) AttendanceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.AttendanceStats()
	if err != nil {
		h.log.Error("attendance stats failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}
