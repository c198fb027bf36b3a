package route

import (
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
)

const (
	msgMissingOrigin       = "Please enter a starting point"
	msgMissingDestinations = "Please add at least one destination"
)

// Request is a routing request ready to be sent to a directions backend.
type Request struct {
	Origin            Location   `json:"origin"`
	Destination       Location   `json:"destination"`
	Waypoints         []Location `json:"waypoints"`
	Mode              TravelMode `json:"mode"`
	OptimizeWaypoints bool       `json:"optimize_waypoints"`
}

// Build assembles a Request. The last destination is the final stop; the ones
// before it become waypoints in order. optimize is passed through untouched.
func Build(origin Location, destinations []Location, mode TravelMode, optimize bool) (Request, error) {
	if origin.IsZero() {
		return Request{}, apperr.NewValidationError(msgMissingOrigin)
	}
	if len(destinations) == 0 {
		return Request{}, apperr.NewValidationError(msgMissingDestinations)
	}
	for _, d := range destinations {
		if d.IsZero() {
			return Request{}, apperr.NewValidationError(msgMissingDestinations)
		}
	}
	if !mode.IsValid() {
		return Request{}, apperr.NewValidationError("invalid travel mode: " + string(mode))
	}

	last := len(destinations) - 1
	waypoints := make([]Location, last)
	copy(waypoints, destinations[:last])

	return Request{
		Origin:            origin,
		Destination:       destinations[last],
		Waypoints:         waypoints,
		Mode:              mode,
		OptimizeWaypoints: optimize,
	}, nil
}

// Stops returns origin, waypoints and destination in travel order.
func (r Request) Stops() []Location {
	stops := make([]Location, 0, len(r.Waypoints)+2)
	stops = append(stops, r.Origin)
	stops = append(stops, r.Waypoints...)
	return append(stops, r.Destination)
}
