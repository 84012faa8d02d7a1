// Package geo provides WGS84 coordinate primitives shared by routing, geocoding and location tracking.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate indicates a longitude or latitude outside the WGS84 range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// earthRadiusMeters is the mean Earth radius used for haversine distances.
const earthRadiusMeters = 6371008.8

// Coordinate is an immutable (longitude, latitude) pair.
type Coordinate struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// New returns a coordinate from longitude and latitude, in that order.
func New(lon, lat float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat}
}

// Validate checks that the coordinate lies within [-180,180] x [-90,90].
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinate, c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// String formats the coordinate as "lon,lat", the order used by Mapbox and GeoJSON.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// BoundingBox is the smallest axis-aligned rectangle containing a set of points.
type BoundingBox struct {
	SouthWest Coordinate `json:"southWest"`
	NorthEast Coordinate `json:"northEast"`
}

// BoundsOf computes the bounding box of the given points.
// The second return value is false when points is empty.
func BoundsOf(points []Coordinate) (BoundingBox, bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}

	box := BoundingBox{SouthWest: points[0], NorthEast: points[0]}
	for _, p := range points[1:] {
		box.SouthWest.Lon = math.Min(box.SouthWest.Lon, p.Lon)
		box.SouthWest.Lat = math.Min(box.SouthWest.Lat, p.Lat)
		box.NorthEast.Lon = math.Max(box.NorthEast.Lon, p.Lon)
		box.NorthEast.Lat = math.Max(box.NorthEast.Lat, p.Lat)
	}
	return box, true
}

// Contains reports whether c lies inside the box, edges included.
func (b BoundingBox) Contains(c Coordinate) bool {
	return c.Lon >= b.SouthWest.Lon && c.Lon <= b.NorthEast.Lon &&
		c.Lat >= b.SouthWest.Lat && c.Lat <= b.NorthEast.Lat
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	return Coordinate{
		Lon: (b.SouthWest.Lon + b.NorthEast.Lon) / 2,
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
	}
}

// Equal reports whether both coordinates are identical.
func (c Coordinate) Equal(o Coordinate) bool {
	return c.Lon == o.Lon && c.Lat == o.Lat
}
