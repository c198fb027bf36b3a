// Package presenter turns a calculated route into what the user sees: a
// summary, a per-leg itinerary and the overlays drawn on the map.
package presenter

import (
	"fmt"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/paulmach/orb"
)

const (
	ColorStart    = "#4CAF50"
	ColorWaypoint = "#FF9800"
	ColorEnd      = "#F44336"
)

// Options style the route line.
type Options struct {
	LineColor   string
	LineWeight  int
	LineOpacity float64
}

// DefaultOptions is a 5px line in #667eea at 0.8 opacity.
func DefaultOptions() Options {
	return Options{LineColor: "#667eea", LineWeight: 5, LineOpacity: 0.8}
}

// Summary holds the route totals.
type Summary struct {
	TotalDistanceMeters  int    `json:"total_distance_meters"`
	TotalDistance        string `json:"total_distance"`
	TotalDurationSeconds int    `json:"total_duration_seconds"`
	TotalDuration        string `json:"total_duration"`
	WaypointCount        int    `json:"waypoint_count"`
}

// Step is one itinerary line.
type Step struct {
	Index    int    `json:"index"`
	From     string `json:"from"`
	To       string `json:"to"`
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

// Presentation is a fully formatted route.
type Presentation struct {
	Summary Summary       `json:"summary"`
	Steps   []Step        `json:"steps"`
	Scene   mapview.Scene `json:"-"`
}

// Presenter formats route results.
type Presenter struct {
	opts Options
}

// New creates a Presenter. Zero-valued options fall back to the defaults.
func New(opts Options) *Presenter {
	def := DefaultOptions()
	if opts.LineColor == "" {
		opts.LineColor = def.LineColor
	}
	if opts.LineWeight <= 0 {
		opts.LineWeight = def.LineWeight
	}
	if opts.LineOpacity <= 0 {
		opts.LineOpacity = def.LineOpacity
	}
	return &Presenter{opts: opts}
}

// Present builds the summary, itinerary and map scene for a successful result.
func (p *Presenter) Present(result *route.Result) (*Presentation, error) {
	if result == nil || len(result.Legs) == 0 {
		return nil, route.NewError(route.KindZeroResults, fmt.Errorf("route has no legs"))
	}

	return &Presentation{
		Summary: Summarize(result),
		Steps:   Itinerary(result),
		Scene:   p.scene(result),
	}, nil
}

// Summarize computes the formatted totals.
func Summarize(result *route.Result) Summary {
	meters := result.TotalDistanceMeters()
	seconds := result.TotalDurationSeconds()
	return Summary{
		TotalDistanceMeters:  meters,
		TotalDistance:        route.FormatDistance(meters),
		TotalDurationSeconds: seconds,
		TotalDuration:        route.FormatDuration(seconds),
		WaypointCount:        result.WaypointCount(),
	}
}

// Itinerary returns one step per leg, numbered from 1.
func Itinerary(result *route.Result) []Step {
	steps := make([]Step, 0, len(result.Legs))
	for i, leg := range result.Legs {
		distance := leg.DistanceText
		if distance == "" {
			distance = route.FormatDistance(leg.DistanceMeters)
		}
		duration := leg.DurationText
		if duration == "" {
			duration = route.FormatDuration(leg.DurationSeconds)
		}
		steps = append(steps, Step{
			Index:    i + 1,
			From:     leg.StartAddress,
			To:       leg.EndAddress,
			Distance: distance,
			Duration: duration,
		})
	}
	return steps
}

// Markers labels the stops A, B, C... in leg order: green start, orange
// intermediate stops and a red final destination.
func Markers(result *route.Result) []mapview.Marker {
	if len(result.Legs) == 0 {
		return nil
	}

	markers := make([]mapview.Marker, 0, len(result.Legs)+1)
	markers = append(markers, mapview.Marker{
		Label:    markerLabel(0),
		Title:    "Starting Point",
		Color:    ColorStart,
		Position: result.Legs[0].StartLocation,
	})
	for i := 1; i < len(result.Legs); i++ {
		markers = append(markers, mapview.Marker{
			Label:    markerLabel(i),
			Title:    fmt.Sprintf("Waypoint %d", i),
			Color:    ColorWaypoint,
			Position: result.Legs[i].StartLocation,
		})
	}
	last := len(result.Legs)
	markers = append(markers, mapview.Marker{
		Label:    markerLabel(last),
		Title:    "Final Destination",
		Color:    ColorEnd,
		Position: result.Legs[last-1].EndLocation,
	})
	return markers
}

func (p *Presenter) scene(result *route.Result) mapview.Scene {
	path := make([]route.Coordinate, 0, len(result.Geometry))
	for _, pt := range result.Geometry {
		path = append(path, route.CoordinateFromPoint(pt))
	}
	if len(path) == 0 {
		path = result.Endpoints()
	}

	return mapview.Scene{
		Line: &mapview.Polyline{
			Path:    path,
			Color:   p.opts.LineColor,
			Weight:  p.opts.LineWeight,
			Opacity: p.opts.LineOpacity,
		},
		Markers: Markers(result),
		Bounds:  bounds(result, path),
	}
}

func bounds(result *route.Result, path []route.Coordinate) orb.Bound {
	endpoints := result.Endpoints()
	b := endpoints[0].Point().Bound()
	for _, c := range endpoints[1:] {
		b = b.Extend(c.Point())
	}
	for _, c := range path {
		b = b.Extend(c.Point())
	}
	return b
}

// markerLabel maps 0 → "A", 25 → "Z", 26 → "A1".
func markerLabel(i int) string {
	letter := string(rune('A' + i%26))
	if i < 26 {
		return letter
	}
	return fmt.Sprintf("%s%d", letter, i/26)
}
