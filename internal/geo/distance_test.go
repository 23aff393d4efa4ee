package geo

import (
	"math"
	"testing"
)

func TestHaversineSymmetric(t *testing.T) {
	// Manchester and Liverpool city centres
	d1 := Haversine(53.4808, -2.2426, 53.4084, -2.9916)
	d2 := Haversine(53.4084, -2.9916, 53.4808, -2.2426)

	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}

	// Roughly 31 miles between the two centres
	if d1 < 28 || d1 > 34 {
		t.Errorf("unexpected Manchester-Liverpool distance: %f miles", d1)
	}
}

func TestHaversineZeroAtSamePoint(t *testing.T) {
	if d := Haversine(53.48, -2.24, 53.48, -2.24); d != 0 {
		t.Errorf("expected zero distance for identical points, got %f", d)
	}
}

func TestFindNearestCentre(t *testing.T) {
	// A point in Salford should resolve to Greater Manchester
	c, dist := FindNearestCentre(53.4875, -2.2901)
	if c.Name != "Greater Manchester" {
		t.Errorf("expected Greater Manchester, got %s", c.Name)
	}
	if dist > 5 {
		t.Errorf("unexpected distance to centre: %f", dist)
	}
}
