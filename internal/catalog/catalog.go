package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"foodbank-finder/internal/events"
	"foodbank-finder/internal/geo"
	"foodbank-finder/internal/models"
	"foodbank-finder/internal/source"
)

var (
	// ErrSuperseded is returned when a load result is discarded because a
	// newer load request was issued while it was in flight.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrUnknownRegion is returned for region ids not in the manifest.
	ErrUnknownRegion = errors.New("unknown region")
)

const defaultPageSize = 12

// Dataset describes one loadable region dataset.
type Dataset struct {
	ID    string
	Label string
	Path  string
}

// Presenter consumes the catalog's current page of visible records.
// Implementations must not call back into the catalog.
type Presenter interface {
	Render(page []models.DisplayRecord, hasMore bool, totalCount int)
}

// View is a consistent snapshot of the catalog's visible state.
// MapCentre is the fallback map position for the active dataset, used
// until a user position is known.
type View struct {
	Region     string                 `json:"region"`
	Records    []models.DisplayRecord `json:"locations"`
	HasMore    bool                   `json:"has_more"`
	TotalCount int                    `json:"total_count"`
	OpenNow    int                    `json:"open_now"`
	Dropped    int                    `json:"dropped_rows"`
	MapCentre  models.Position        `json:"map_centre"`
	Filters    models.FilterState     `json:"filters"`
	Boroughs   []string               `json:"boroughs"`
}

// Options configures a Catalog.
type Options struct {
	Loader    source.Loader
	Datasets  []Dataset
	Presenter Presenter    // optional
	Bus       *events.Bus  // optional
	Now       func() time.Time
	PageSize  int
}

// Catalog owns the record list and filter state for a set of region
// datasets. All mutation happens through intent methods; a mutex
// serializes them so intents behave as a single logical thread of
// control regardless of which goroutine (HTTP handler, ticker, watcher)
// delivers them.
type Catalog struct {
	mu        sync.Mutex
	loader    source.Loader
	datasets  map[string]Dataset
	presenter Presenter
	bus       *events.Bus
	now       func() time.Time
	pageSize  int

	cache map[string]loaded // previously loaded datasets, by region id

	active     string
	records    []models.Location
	dropped    int
	boroughs   []string
	centre     models.Position
	filtered   []models.Location
	filters    models.FilterState
	position   *models.Position
	userSorted bool
	page       int
	loadSeq    uint64
}

type loaded struct {
	records []models.Location
	dropped int
}

// New creates an empty catalog; call SwitchDataset to load a region.
func New(opts Options) *Catalog {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	datasets := make(map[string]Dataset, len(opts.Datasets))
	for _, d := range opts.Datasets {
		datasets[d.ID] = d
	}
	return &Catalog{
		loader:    opts.Loader,
		datasets:  datasets,
		presenter: opts.Presenter,
		bus:       opts.Bus,
		now:       opts.Now,
		pageSize:  opts.PageSize,
		cache:     make(map[string]loaded),
		filters:   models.DefaultFilters(),
		page:      1,
	}
}

// SwitchDataset makes the given region the active dataset, fetching it
// on first use and serving from the in-memory cache afterwards. When two
// switches race, the last-issued request wins and the stale result is
// discarded with ErrSuperseded. A failed load leaves the previous
// dataset untouched.
func (c *Catalog) SwitchDataset(ctx context.Context, regionID string) error {
	c.mu.Lock()
	ds, ok := c.datasets[regionID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRegion, regionID)
	}
	if cached, ok := c.cache[regionID]; ok {
		// A cached switch supersedes any load still in flight.
		c.loadSeq++
		c.applyDatasetLocked(regionID, cached)
		c.mu.Unlock()
		return nil
	}
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	return c.load(ctx, ds, seq)
}

// Reload re-fetches a region from its source, bypassing the cache. Used
// when a dataset file changes on disk. Reloading an inactive region only
// invalidates its cache entry.
func (c *Catalog) Reload(ctx context.Context, regionID string) error {
	c.mu.Lock()
	ds, ok := c.datasets[regionID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRegion, regionID)
	}
	delete(c.cache, regionID)
	if c.active != regionID {
		c.mu.Unlock()
		return nil
	}
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	return c.load(ctx, ds, seq)
}

// load fetches and normalizes outside the lock, then applies the result
// if no newer request superseded it in the meantime.
func (c *Catalog) load(ctx context.Context, ds Dataset, seq uint64) error {
	rows, err := c.loader.Load(ctx, ds.Path)
	if err != nil {
		return fmt.Errorf("failed to load dataset %s: %w", ds.ID, err)
	}
	records, dropped := Normalize(ds.ID, rows)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.loadSeq {
		c.publish(events.LoadDiscarded{Region: ds.ID})
		return ErrSuperseded
	}
	result := loaded{records: records, dropped: dropped}
	c.cache[ds.ID] = result
	c.applyDatasetLocked(ds.ID, result)
	return nil
}

func (c *Catalog) applyDatasetLocked(regionID string, data loaded) {
	c.active = regionID
	c.records = make([]models.Location, len(data.records))
	copy(c.records, data.records)
	c.dropped = data.dropped

	c.boroughs = boroughFacets(c.records)
	c.centre = mapCentre(c.records)
	if c.position != nil {
		c.computeDistancesLocked()
	}
	c.computeStatusesLocked()
	c.runLocked(true)
	c.publish(events.DatasetLoaded{Region: regionID, Count: len(c.records), Dropped: c.dropped})
}

// mapCentre picks the region centre nearest to the dataset's records,
// so the map has a sensible position before the user shares theirs.
func mapCentre(records []models.Location) models.Position {
	if len(records) == 0 {
		return models.Position{}
	}
	var lat, lng float64
	for _, loc := range records {
		lat += loc.Latitude
		lng += loc.Longitude
	}
	n := float64(len(records))
	point, _ := geo.FindNearestCentre(lat/n, lng/n)
	return models.Position{Lat: point.Latitude, Lng: point.Longitude}
}

func boroughFacets(records []models.Location) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, loc := range records {
		if loc.Borough == "" {
			continue
		}
		if _, ok := seen[loc.Borough]; !ok {
			seen[loc.Borough] = struct{}{}
			out = append(out, loc.Borough)
		}
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) computeStatusesLocked() {
	now := c.now()
	for i := range c.records {
		c.records[i].Status, c.records[i].NextOpening = ComputeStatus(&c.records[i], now)
	}
}

func (c *Catalog) computeDistancesLocked() {
	for i := range c.records {
		d := geo.Haversine(c.position.Lat, c.position.Lng, c.records[i].Latitude, c.records[i].Longitude)
		c.records[i].Distance = &d
	}
}

// runLocked reruns the filter/sort pipeline. Page resets to 1 only for
// new filter state; tick-triggered reruns keep the current page.
func (c *Catalog) runLocked(resetPage bool) {
	c.filtered = runPipeline(c.records, c.filters, c.now(), c.position != nil)
	if resetPage {
		c.page = 1
	}
	c.notifyLocked()
}

func (c *Catalog) notifyLocked() {
	if c.presenter == nil {
		return
	}
	page, hasMore := c.pageLocked()
	c.presenter.Render(page, hasMore, len(c.filtered))
}

func (c *Catalog) pageLocked() ([]models.DisplayRecord, bool) {
	end := c.page * c.pageSize
	if end > len(c.filtered) {
		end = len(c.filtered)
	}
	out := make([]models.DisplayRecord, 0, end)
	for _, loc := range c.filtered[:end] {
		out = append(out, displayRecord(loc, false))
	}
	return out, end < len(c.filtered)
}

func (c *Catalog) publish(ev any) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

// SetSearch updates the free-text search and reruns the pipeline.
func (c *Catalog) SetSearch(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Search = text
	c.runLocked(true)
}

// SetBoroughFilter selects an administrative area, or "all".
func (c *Catalog) SetBoroughFilter(borough string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Borough = borough
	c.runLocked(true)
}

// SetDayFilter selects a day predicate.
func (c *Catalog) SetDayFilter(day models.DayFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Day = day
	c.runLocked(true)
}

// SetServiceFilter selects a service capability, or "all".
func (c *Catalog) SetServiceFilter(service models.ServiceKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Service = service
	c.runLocked(true)
}

// SetQuickFilter selects a named composite predicate.
func (c *Catalog) SetQuickFilter(quick models.QuickFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Quick = quick
	c.runLocked(true)
}

// SetSort selects the sort key. A user-chosen sort is never overridden
// by a later position fix.
func (c *Catalog) SetSort(key models.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters.Sort = key
	c.userSorted = true
	c.runLocked(true)
}

// ClearAllFilters restores defaults. Sort falls back to name order until
// a position is known.
func (c *Catalog) ClearAllFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filters = models.DefaultFilters()
	if c.position == nil {
		c.filters.Sort = models.SortName
	}
	c.userSorted = false
	c.runLocked(true)
}

// LoadMore reveals the next page within the current filter state. It
// never shrinks the visible set and never reruns the pipeline.
func (c *Catalog) LoadMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	end := c.page * c.pageSize
	if end < len(c.filtered) {
		c.page++
	}
	c.notifyLocked()
}

// SetPosition attaches a user position, computes distances for the
// active dataset and switches to distance sort unless the user already
// chose a sort explicitly. A position arriving after filter changes
// still applies.
func (c *Catalog) SetPosition(pos models.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = &pos
	c.computeDistancesLocked()
	if !c.userSorted {
		c.filters.Sort = models.SortDistance
	}
	c.runLocked(true)
	c.publish(events.PositionSet{Lat: pos.Lat, Lng: pos.Lng})
}

// Tick recomputes statuses against the current clock. Status-dependent
// view modes (open-now quick filter, opening-soon sort) need the full
// pipeline rerun; otherwise a re-render of the current page suffices.
// The current page is kept either way.
func (c *Catalog) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.records) == 0 {
		return
	}
	c.computeStatusesLocked()
	now := c.now()
	for i := range c.filtered {
		c.filtered[i].Status, c.filtered[i].NextOpening = ComputeStatus(&c.filtered[i], now)
	}
	c.publish(events.Ticked{Region: c.active, OpenNow: c.openNowLocked()})

	if c.filters.Quick == models.QuickOpenNow || c.filters.Sort == models.SortOpeningSoon {
		c.runLocked(false)
		return
	}
	if len(c.filtered) > 0 {
		c.notifyLocked()
	}
}

func (c *Catalog) openNowLocked() int {
	n := 0
	for _, loc := range c.records {
		if loc.Status == models.StatusOpen {
			n++
		}
	}
	return n
}

// Snapshot returns the current visible state.
func (c *Catalog) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, hasMore := c.pageLocked()
	return View{
		Region:     c.active,
		Records:    page,
		HasMore:    hasMore,
		TotalCount: len(c.filtered),
		OpenNow:    c.openNowLocked(),
		Dropped:    c.dropped,
		MapCentre:  c.centre,
		Filters:    c.filters,
		Boroughs:   append([]string(nil), c.boroughs...),
	}
}

// Get returns the detail view for a record in the active dataset.
func (c *Catalog) Get(id string) (models.DisplayRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, loc := range c.records {
		if loc.ID == id {
			return displayRecord(loc, true), true
		}
	}
	return models.DisplayRecord{}, false
}

// Boroughs returns the facet list for the active dataset.
func (c *Catalog) Boroughs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.boroughs...)
}

// Datasets lists the configured regions.
func (c *Catalog) Datasets() []Dataset {
	out := make([]Dataset, 0, len(c.datasets))
	for _, d := range c.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the active region id, empty before the first load.
func (c *Catalog) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// RegionForFile resolves a dataset file name back to its region id, for
// the data-directory watcher.
func (c *Catalog) RegionForFile(name string) (string, bool) {
	for id, d := range c.datasets {
		if name == d.Path || name == filepath.Base(d.Path) {
			return id, true
		}
	}
	return "", false
}

func displayRecord(loc models.Location, withHours bool) models.DisplayRecord {
	rec := models.DisplayRecord{
		Location:    loc,
		StatusLabel: models.StatusLabelFor(loc.Status),
		AccessLabel: models.AccessLabelFor(loc.AccessType),
		CostLabel:   models.CostLabelFor(loc.Cost),
	}
	if withHours {
		rec.WeeklyHours = weeklyHours(loc)
	}
	return rec
}

func weeklyHours(loc models.Location) []models.DayHours {
	days := []struct {
		name string
		open bool
	}{
		{"Monday", loc.Days.Monday},
		{"Tuesday", loc.Days.Tuesday},
		{"Wednesday", loc.Days.Wednesday},
		{"Thursday", loc.Days.Thursday},
		{"Friday", loc.Days.Friday},
		{"Saturday", loc.Days.Saturday},
		{"Sunday", loc.Days.Sunday},
	}
	out := make([]models.DayHours, 0, 7)
	for _, d := range days {
		times := "Closed"
		if d.open && loc.OpeningTime != "" && loc.ClosingTime != "" {
			times = loc.OpeningTime + " - " + loc.ClosingTime
		}
		out = append(out, models.DayHours{Day: d.name, Open: d.open, Times: times})
	}
	return out
}
