package position

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"foodbank-finder/internal/models"
)

const (
	requestTimeout = 10 * time.Second
	maxFixAge      = 5 * time.Minute
)

// Provider resolves a user-supplied place query to a coordinate.
type Provider interface {
	Request(ctx context.Context, query string) (models.Position, error)
}

// Geocoder resolves postcodes and addresses via Nominatim. A fix less
// than five minutes old for the same query is reused without a network
// request, and outbound calls are limited to one per second per the
// Nominatim usage policy.
type Geocoder struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	baseURL   string

	mu        sync.Mutex
	lastQuery string
	lastFix   *Fix
	now       func() time.Time
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NewGeocoder creates a Nominatim-backed provider.
func NewGeocoder(baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Geocoder{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		userAgent: "FoodbankFinder/1.0 (food bank directory)",
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// Request resolves query to a coordinate. Failures carry a FailureCode;
// the caller decides how to surface them.
func (g *Geocoder) Request(ctx context.Context, query string) (models.Position, error) {
	g.mu.Lock()
	if g.lastFix != nil && g.lastQuery == query && g.now().Sub(g.lastFix.At) <= maxFixAge {
		pos := g.lastFix.Position
		g.mu.Unlock()
		return pos, nil
	}
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return models.Position{}, &Error{Code: Timeout, Err: err}
	}

	pos, err := g.geocode(ctx, query)
	if err != nil {
		return models.Position{}, err
	}

	g.mu.Lock()
	g.lastQuery = query
	g.lastFix = &Fix{Position: pos, At: g.now()}
	g.mu.Unlock()
	return pos, nil
}

func (g *Geocoder) geocode(ctx context.Context, query string) (models.Position, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "gb")

	reqURL := fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return models.Position{}, &Error{Code: Unknown, Err: err}
	}

	// Nominatim requires a valid User-Agent
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.Position{}, &Error{Code: Timeout, Err: err}
		}
		return models.Position{}, &Error{Code: PositionUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return models.Position{}, &Error{Code: PermissionDenied, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return models.Position{}, &Error{Code: PositionUnavailable, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Position{}, &Error{Code: Unknown, Err: err}
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return models.Position{}, &Error{Code: Unknown, Err: err}
	}
	if len(results) == 0 {
		return models.Position{}, &Error{Code: PositionUnavailable, Err: fmt.Errorf("no results for %q", query)}
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return models.Position{}, &Error{Code: Unknown, Err: fmt.Errorf("bad coordinates in response")}
	}

	return models.Position{Lat: lat, Lng: lng}, nil
}
