package geo

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"valid cairo", 30.5, 31.2, true},
		{"valid negative", -33.86, 151.2, true},
		{"zero pair rejected", 0, 0, false},
		{"zero lat only is fine", 0, 31.2, true},
		{"lat above range", 91, 0, false},
		{"lat below range", -90.0001, 10, false},
		{"lng above range", 30, 180.5, false},
		{"lng below range", 30, -181, false},
		{"lat boundary", 90, 10, true},
		{"lng boundary", 10, -180, true},
		{"nan lat", math.NaN(), 31.2, false},
		{"inf lng", 30.5, math.Inf(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, ok := New(tc.lat, tc.lng)
			if ok != tc.want {
				t.Fatalf("New(%v, %v) ok = %v, want %v", tc.lat, tc.lng, ok, tc.want)
			}
			if ok && (c.Lat != tc.lat || c.Lng != tc.lng) {
				t.Fatalf("New(%v, %v) = %+v, expected pair unchanged", tc.lat, tc.lng, c)
			}
		})
	}
}

func TestKeyRoundsToFiveDecimals(t *testing.T) {
	c := Coordinate{Lat: 30.123456789, Lng: 31.000001234}
	if got, want := c.Key(), "30.12346,31.00000"; got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
}
