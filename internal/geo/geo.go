// README: Coordinate value type and validation gate used before any routing call.
package geo

import (
	"fmt"
	"math"
)

// Coordinate is an immutable geographic point.
type Coordinate struct {
	Lat float64
	Lng float64
}

// New validates a raw lat/lng pair and returns the coordinate.
// The pair is rejected when either field is not finite, when both are
// exactly zero (the "unset" sentinel used by upstream records), or when
// it falls outside the [-90,90]/[-180,180] range.
func New(lat, lng float64) (Coordinate, bool) {
	if !finite(lat) || !finite(lng) {
		return Coordinate{}, false
	}
	if lat == 0 && lng == 0 {
		return Coordinate{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lng: lng}, true
}

// Valid reports whether the coordinate would pass New.
func (c Coordinate) Valid() bool {
	_, ok := New(c.Lat, c.Lng)
	return ok
}

// Key renders the coordinate rounded to 5 decimal places, used as a
// stable fragment of matrix cache keys (~1m resolution).
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.5f,%.5f", c.Lat, c.Lng)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
