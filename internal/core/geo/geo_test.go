package geo

import (
	"math"
	"testing"
)

func TestDistanceMiles_KnownPair(t *testing.T) {
	// Empire State Building to Statue of Liberty, roughly 5.2 miles
	esb := Point{Lat: 40.7484, Lng: -73.9857}
	sol := Point{Lat: 40.6892, Lng: -74.0445}
	d := DistanceMiles(esb, sol)
	if d < 5.0 || d > 5.5 {
		t.Fatalf("distance = %f, want ~5.2", d)
	}
}

func TestDistanceMiles_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 37.7749, Lng: -122.4194}
	if d := DistanceMiles(p, p); d != 0 {
		t.Fatalf("distance to self = %f, want 0", d)
	}
}

func TestDistanceMiles_Symmetric(t *testing.T) {
	a := Point{Lat: 34.0522, Lng: -118.2437}
	b := Point{Lat: 36.1699, Lng: -115.1398}
	if d1, d2 := DistanceMiles(a, b), DistanceMiles(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric distance: %f vs %f", d1, d2)
	}
}

func TestBounds_Center(t *testing.T) {
	b := Bounds{A: Point{Lat: 40, Lng: -74}, B: Point{Lat: 41, Lng: -73}}
	c := b.Center()
	if c.Lat != 40.5 || c.Lng != -73.5 {
		t.Fatalf("center = %+v, want {40.5 -73.5}", c)
	}
}

func TestBounds_Contains(t *testing.T) {
	// corners given in either order must describe the same rectangle
	b := Bounds{A: Point{Lat: 41, Lng: -73}, B: Point{Lat: 40, Lng: -74}}
	cases := []struct {
		p    Point
		want bool
	}{
		{Point{Lat: 40.5, Lng: -73.5}, true},
		{Point{Lat: 40, Lng: -74}, true}, // edge inclusive
		{Point{Lat: 39.9, Lng: -73.5}, false},
		{Point{Lat: 40.5, Lng: -72.9}, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.p); got != c.want {
			t.Fatalf("Contains(%+v) = %v, want %v", c.p, got, c.want)
		}
	}
}
