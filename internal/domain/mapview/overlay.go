package mapview

import (
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/paulmach/orb"
)

// Marker is a labelled stop pin.
type Marker struct {
	Label    string           `json:"label"`
	Title    string           `json:"title"`
	Color    string           `json:"color"`
	Position route.Coordinate `json:"position"`
}

// Polyline is the drawn route line.
type Polyline struct {
	Path    []route.Coordinate `json:"path"`
	Color   string             `json:"color"`
	Weight  int                `json:"weight"`
	Opacity float64            `json:"opacity"`
}

// Overlays are the handles currently drawn on the map.
type Overlays struct {
	Line    *Polyline `json:"line,omitempty"`
	Markers []Marker  `json:"markers"`
}

// IsEmpty reports whether nothing is drawn.
func (o Overlays) IsEmpty() bool {
	return o.Line == nil && len(o.Markers) == 0
}

// Scene is everything needed to draw one route.
type Scene struct {
	Line    *Polyline
	Markers []Marker
	Bounds  orb.Bound
}
