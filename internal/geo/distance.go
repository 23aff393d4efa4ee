package geo

import (
	"math"
)

const (
	// Earth radius in miles
	EarthRadiusMiles = 3959.0
)

// Haversine calculates the great-circle distance between two points
// Returns distance in miles
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert to radians
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	// Haversine formula
	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Point represents a named geographic point
type Point struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Region centres, used as fallback map positions for datasets
var RegionCentres = []Point{
	{Name: "Greater Manchester", Latitude: 53.4808, Longitude: -2.2426},
	{Name: "Liverpool", Latitude: 53.4084, Longitude: -2.9916},
}

// FindNearestCentre finds the region centre closest to a given location
func FindNearestCentre(lat, lng float64) (Point, float64) {
	var nearest Point
	minDist := math.MaxFloat64

	for _, c := range RegionCentres {
		dist := Haversine(lat, lng, c.Latitude, c.Longitude)
		if dist < minDist {
			minDist = dist
			nearest = c
		}
	}

	return nearest, minDist
}
