package route

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Address is free text entered by the user.
type Address string

// Normalize trims surrounding whitespace.
func (a Address) Normalize() Address {
	return Address(strings.TrimSpace(string(a)))
}

// IsBlank reports whether the address is empty after trimming.
func (a Address) IsBlank() bool {
	return a.Normalize() == ""
}

// Coordinate is a WGS84 position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether the coordinate lies within the WGS84 range.
func (c Coordinate) IsValid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Point converts to an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// String formats as "lat,lng".
func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// CoordinateFromPoint converts an orb point back to a Coordinate.
func CoordinateFromPoint(p orb.Point) Coordinate {
	return Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// Location is a stop given either as an address or as a resolved coordinate.
type Location struct {
	Address    Address     `json:"address,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

// AddressLocation builds a Location from free text.
func AddressLocation(a Address) Location {
	return Location{Address: a.Normalize()}
}

// CoordinateLocation builds a Location from a coordinate, keeping an optional label.
func CoordinateLocation(c Coordinate, label Address) Location {
	return Location{Address: label.Normalize(), Coordinate: &c}
}

// IsZero reports whether neither an address nor a coordinate is set.
func (l Location) IsZero() bool {
	return l.Coordinate == nil && l.Address.IsBlank()
}

// Label is the human text for the stop.
func (l Location) Label() string {
	if !l.Address.IsBlank() {
		return string(l.Address)
	}
	if l.Coordinate != nil {
		return l.Coordinate.String()
	}
	return ""
}
