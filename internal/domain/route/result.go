package route

import "github.com/paulmach/orb"

// Leg is one start-to-end segment of a multi-stop route.
type Leg struct {
	StartLocation   Coordinate `json:"start_location"`
	EndLocation     Coordinate `json:"end_location"`
	StartAddress    string     `json:"start_address"`
	EndAddress      string     `json:"end_address"`
	DistanceMeters  int        `json:"distance_meters"`
	DistanceText    string     `json:"distance_text"`
	DurationSeconds int        `json:"duration_seconds"`
	DurationText    string     `json:"duration_text"`
}

// Result is a calculated route. It is not modified after the backend returns it.
type Result struct {
	Legs     []Leg          `json:"legs"`
	Geometry orb.LineString `json:"-"`
	Backend  string         `json:"backend"`
}

// TotalDistanceMeters sums the leg distances.
func (r *Result) TotalDistanceMeters() int {
	total := 0
	for _, leg := range r.Legs {
		total += leg.DistanceMeters
	}
	return total
}

// TotalDurationSeconds sums the leg durations.
func (r *Result) TotalDurationSeconds() int {
	total := 0
	for _, leg := range r.Legs {
		total += leg.DurationSeconds
	}
	return total
}

// WaypointCount is the number of intermediate stops.
func (r *Result) WaypointCount() int {
	if len(r.Legs) == 0 {
		return 0
	}
	return len(r.Legs) - 1
}

// Endpoints returns every leg start plus the final end, in order.
func (r *Result) Endpoints() []Coordinate {
	if len(r.Legs) == 0 {
		return nil
	}
	points := make([]Coordinate, 0, len(r.Legs)+1)
	for _, leg := range r.Legs {
		points = append(points, leg.StartLocation)
	}
	return append(points, r.Legs[len(r.Legs)-1].EndLocation)
}
