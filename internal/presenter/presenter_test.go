package presenter

import (
	"errors"
	"testing"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	newYork      = route.Coordinate{Lat: 40.7128, Lng: -74.0060}
	philadelphia = route.Coordinate{Lat: 39.9526, Lng: -75.1652}
	hartford     = route.Coordinate{Lat: 41.7658, Lng: -72.6734}
	boston       = route.Coordinate{Lat: 42.3601, Lng: -71.0589}
)

func TestPresent_NewYorkToBoston(t *testing.T) {
	result := &route.Result{Legs: []route.Leg{{
		StartLocation:   newYork,
		EndLocation:     boston,
		StartAddress:    "New York, NY, USA",
		EndAddress:      "Boston, MA, USA",
		DistanceMeters:  346120,
		DistanceText:    "346 km",
		DurationSeconds: 12945,
		DurationText:    "3 hours 35 mins",
	}}}

	p, err := New(Options{}).Present(result)
	require.NoError(t, err)

	assert.Equal(t, "346.1 km", p.Summary.TotalDistance)
	assert.Equal(t, "3h 35m", p.Summary.TotalDuration)
	assert.Equal(t, 0, p.Summary.WaypointCount)

	require.Len(t, p.Steps, 1)
	assert.Equal(t, Step{Index: 1, From: "New York, NY, USA", To: "Boston, MA, USA", Distance: "346 km", Duration: "3 hours 35 mins"}, p.Steps[0])

	markers := p.Scene.Markers
	require.Len(t, markers, 2)
	assert.Equal(t, "A", markers[0].Label)
	assert.Equal(t, ColorStart, markers[0].Color)
	assert.Equal(t, newYork, markers[0].Position)
	assert.Equal(t, "Starting Point", markers[0].Title)
	assert.Equal(t, "B", markers[1].Label)
	assert.Equal(t, ColorEnd, markers[1].Color)
	assert.Equal(t, "Final Destination", markers[1].Title)
	assert.Equal(t, boston, markers[1].Position)

	require.NotNil(t, p.Scene.Line)
	assert.Equal(t, "#667eea", p.Scene.Line.Color)
	assert.Equal(t, 5, p.Scene.Line.Weight)
	assert.InDelta(t, 0.8, p.Scene.Line.Opacity, 1e-9)
	assert.Equal(t, []route.Coordinate{newYork, boston}, p.Scene.Line.Path)

	assert.True(t, p.Scene.Bounds.Contains(newYork.Point()))
	assert.True(t, p.Scene.Bounds.Contains(boston.Point()))
}

func TestPresent_MultiStopMarkers(t *testing.T) {
	result := &route.Result{Legs: []route.Leg{
		{StartLocation: philadelphia, EndLocation: newYork, DistanceMeters: 150000, DurationSeconds: 6000},
		{StartLocation: newYork, EndLocation: hartford, DistanceMeters: 190000, DurationSeconds: 7200},
		{StartLocation: hartford, EndLocation: boston, DistanceMeters: 165000, DurationSeconds: 5940},
	}}

	p, err := New(DefaultOptions()).Present(result)
	require.NoError(t, err)

	labels := make([]string, 0, len(p.Scene.Markers))
	colors := make([]string, 0, len(p.Scene.Markers))
	for _, m := range p.Scene.Markers {
		labels = append(labels, m.Label)
		colors = append(colors, m.Color)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, labels)
	assert.Equal(t, []string{ColorStart, ColorWaypoint, ColorWaypoint, ColorEnd}, colors)
	assert.Equal(t, "Waypoint 1", p.Scene.Markers[1].Title)
	assert.Equal(t, "Waypoint 2", p.Scene.Markers[2].Title)

	assert.Equal(t, 2, p.Summary.WaypointCount)
	assert.Equal(t, "505.0 km", p.Summary.TotalDistance)
	assert.Equal(t, "5h 19m", p.Summary.TotalDuration)

	require.Len(t, p.Steps, 3)
	assert.Equal(t, "2h 0m", p.Steps[1].Duration)
	assert.Equal(t, "190.0 km", p.Steps[1].Distance)
}

func TestPresent_UsesGeometryForLineAndBounds(t *testing.T) {
	detour := orb.Point{-75.5, 43.0}
	result := &route.Result{
		Legs: []route.Leg{{StartLocation: newYork, EndLocation: boston}},
		Geometry: orb.LineString{
			newYork.Point(), detour, boston.Point(),
		},
	}

	p, err := New(DefaultOptions()).Present(result)
	require.NoError(t, err)

	assert.Len(t, p.Scene.Line.Path, 3)
	assert.True(t, p.Scene.Bounds.Contains(detour))
	assert.InDelta(t, 43.0, p.Scene.Bounds.Max.Lat(), 1e-9)
}

func TestPresent_EmptyResult(t *testing.T) {
	_, err := New(DefaultOptions()).Present(&route.Result{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, route.ErrZeroResults))
	assert.Equal(t, "No route found between the specified locations", err.Error())
}

func TestMarkerLabel(t *testing.T) {
	assert.Equal(t, "A", markerLabel(0))
	assert.Equal(t, "Z", markerLabel(25))
	assert.Equal(t, "A1", markerLabel(26))
	assert.Equal(t, "B1", markerLabel(27))
}
