// Package polyline implements the encoded polyline algorithm used by routing providers.
// The algorithm is documented at: https://developers.google.com/maps/documentation/utilities/polylinealgorithm
//
// OpenRouteService encodes with precision 5, Mapbox "polyline6" geometries with precision 6.
package polyline

import (
	"errors"
	"math"

	"github.com/roomy/roomy/internal/geo"
)

// Common precisions.
const (
	Precision5 = 5
	Precision6 = 6
)

// ErrMalformed is returned when an encoded string ends in the middle of a value.
var ErrMalformed = errors.New("malformed polyline")

// Decode decodes an encoded polyline into coordinates using the given precision.
func Decode(encoded string, precision int) ([]geo.Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}

	factor := math.Pow10(precision)
	coords := make([]geo.Coordinate, 0, len(encoded)/4)
	index := 0
	lat, lon := 0, 0

	for index < len(encoded) {
		latDelta, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		lonDelta, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lat += latDelta
		lon += lonDelta

		coords = append(coords, geo.Coordinate{
			Lon: float64(lon) / factor,
			Lat: float64(lat) / factor,
		})
	}

	return coords, nil
}

// decodeValue reads one zig-zag encoded varint starting at index.
func decodeValue(encoded string, index int) (int, int, error) {
	shift := 0
	result := 0

	for {
		if index >= len(encoded) {
			return 0, index, ErrMalformed
		}
		b := int(encoded[index]) - 63
		if b < 0 {
			return 0, index, ErrMalformed
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode encodes coordinates into a polyline using the given precision.
func Encode(coords []geo.Coordinate, precision int) string {
	if len(coords) == 0 {
		return ""
	}

	factor := math.Pow10(precision)
	buf := make([]byte, 0, len(coords)*6)
	prevLat, prevLon := 0, 0

	for _, c := range coords {
		lat := int(math.Round(c.Lat * factor))
		lon := int(math.Round(c.Lon * factor))

		buf = encodeValue(buf, lat-prevLat)
		buf = encodeValue(buf, lon-prevLon)

		prevLat, prevLon = lat, lon
	}

	return string(buf)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}
