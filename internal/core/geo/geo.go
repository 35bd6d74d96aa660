// Package geo provides small coordinate helpers: great-circle distance and
// rectangular bounds math. All functions are pure.
package geo

import "math"

// earthRadiusMiles is the mean Earth radius used for haversine distance
const earthRadiusMiles = 3958.8

// Point is a WGS84 coordinate pair
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangle described by two opposite corners. Callers usually
// supply northeast/southwest but any opposite pair works.
type Bounds struct {
	A Point `json:"a"`
	B Point `json:"b"`
}

// DistanceMiles returns the haversine great-circle distance between two points
func DistanceMiles(from, to Point) float64 {
	lat1 := radians(from.Lat)
	lat2 := radians(to.Lat)
	dLat := radians(to.Lat - from.Lat)
	dLng := radians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Center returns the midpoint of the rectangle
func (b Bounds) Center() Point {
	return Point{
		Lat: (b.A.Lat + b.B.Lat) / 2,
		Lng: (b.A.Lng + b.B.Lng) / 2,
	}
}

// Contains reports whether p falls inside the rectangle, inclusive of edges
func (b Bounds) Contains(p Point) bool {
	minLat, maxLat := minMax(b.A.Lat, b.B.Lat)
	minLng, maxLng := minMax(b.A.Lng, b.B.Lng)
	return p.Lat >= minLat && p.Lat <= maxLat && p.Lng >= minLng && p.Lng <= maxLng
}

// MinMaxLat returns the south and north edges in order
func (b Bounds) MinMaxLat() (float64, float64) { return minMax(b.A.Lat, b.B.Lat) }

// MinMaxLng returns the west and east edges in order
func (b Bounds) MinMaxLng() (float64, float64) { return minMax(b.A.Lng, b.B.Lng) }

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func minMax(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}
	return b, a
}
