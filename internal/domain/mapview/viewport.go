package mapview

import (
	"math"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/paulmach/orb"
)

const tileSize = 256.0

// Size is the pixel size of the map container.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Bounds is a south-west / north-east box.
type Bounds struct {
	SouthWest route.Coordinate `json:"south_west"`
	NorthEast route.Coordinate `json:"north_east"`
}

// BoundsFromOrb converts an orb bound.
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		SouthWest: route.CoordinateFromPoint(b.Min),
		NorthEast: route.CoordinateFromPoint(b.Max),
	}
}

// Viewport is what the front-end map should show.
type Viewport struct {
	Center    route.Coordinate `json:"center"`
	Zoom      int              `json:"zoom"`
	Fit       *Bounds          `json:"fit_bounds,omitempty"`
	PaddingPx int              `json:"padding_px,omitempty"`
}

// fitViewport centres on b and picks the largest zoom at which b fits inside
// size minus padding on every side (web mercator).
func fitViewport(b orb.Bound, size Size, padding, maxZoom int) Viewport {
	fit := BoundsFromOrb(b)
	return Viewport{
		Center:    route.CoordinateFromPoint(b.Center()),
		Zoom:      fitZoom(b, size, padding, maxZoom),
		Fit:       &fit,
		PaddingPx: padding,
	}
}

func fitZoom(b orb.Bound, size Size, padding, maxZoom int) int {
	w := float64(size.Width - 2*padding)
	h := float64(size.Height - 2*padding)
	if w <= 0 || h <= 0 {
		return 0
	}

	zoom := float64(maxZoom)
	if lonSpan := b.Max.Lon() - b.Min.Lon(); lonSpan > 0 {
		zoom = math.Min(zoom, math.Log2(w*360/(tileSize*lonSpan)))
	}
	if ySpan := mercatorY(b.Max.Lat()) - mercatorY(b.Min.Lat()); ySpan > 0 {
		zoom = math.Min(zoom, math.Log2(h*2*math.Pi/(tileSize*ySpan)))
	}

	z := int(math.Floor(zoom))
	if z < 0 {
		return 0
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// mercatorY returns the spherical mercator y for a latitude, in radians.
func mercatorY(lat float64) float64 {
	lat = math.Max(math.Min(lat, 85.0511), -85.0511)
	rad := lat * math.Pi / 180
	return math.Log(math.Tan(math.Pi/4 + rad/2))
}
