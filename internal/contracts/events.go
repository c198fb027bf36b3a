// Package contracts holds the Kafka topics and event payloads exchanged with
// other services.
package contracts

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/google/uuid"
)

// EventSource is the CloudEvents source of everything this service publishes.
const EventSource = "service-routeplanner"

// Topics.
const (
	TopicRouteEvents   = "route.events"
	TopicRouteRequests = "route.requests"
)

// Event types.
const (
	RouteCalculated = "routeplanner.route.calculated"
	RouteRequested  = "routeplanner.route.requested"
	RoutePlanned    = "routeplanner.route.planned"
	RouteFailed     = "routeplanner.route.failed"
)

// LocationDTO is a stop given as an address, a coordinate, or both.
type LocationDTO struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// ToLocation converts to a domain location. A coordinate wins over the address.
func (l LocationDTO) ToLocation() route.Location {
	if l.Lat != nil && l.Lng != nil {
		return route.CoordinateLocation(route.Coordinate{Lat: *l.Lat, Lng: *l.Lng}, route.Address(l.Address))
	}
	return route.AddressLocation(route.Address(l.Address))
}

// RouteRequestedEvent asks for a route to be planned without a session.
type RouteRequestedEvent struct {
	RequestID    uuid.UUID     `json:"request_id"`
	Origin       LocationDTO   `json:"origin"`
	Destinations []LocationDTO `json:"destinations"`
	Mode         string        `json:"mode"`
	Optimize     bool          `json:"optimize"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// PlannedLegDTO is one leg of a planned route.
type PlannedLegDTO struct {
	From            string  `json:"from"`
	To              string  `json:"to"`
	StartLat        float64 `json:"start_lat"`
	StartLng        float64 `json:"start_lng"`
	EndLat          float64 `json:"end_lat"`
	EndLng          float64 `json:"end_lng"`
	DistanceMeters  int     `json:"distance_meters"`
	DurationSeconds int     `json:"duration_seconds"`
}

// RoutePlannedEvent answers a RouteRequestedEvent.
type RoutePlannedEvent struct {
	RequestID            uuid.UUID       `json:"request_id"`
	Backend              string          `json:"backend"`
	Mode                 string          `json:"mode"`
	DistanceKm           float64         `json:"distance_km"`
	EstimatedDurationMin int             `json:"estimated_duration_min"`
	TotalDistance        string          `json:"total_distance"`
	TotalDuration        string          `json:"total_duration"`
	Legs                 []PlannedLegDTO `json:"legs"`
	Polyline             string          `json:"polyline,omitempty"`
	OccurredAt           time.Time       `json:"occurred_at"`
}

// RouteFailedEvent reports that a requested route could not be planned.
type RouteFailedEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RouteCalculatedEvent announces a route displayed in a planner session.
type RouteCalculatedEvent struct {
	SessionID       uuid.UUID `json:"session_id"`
	HistoryID       uuid.UUID `json:"history_id"`
	Origin          string    `json:"origin"`
	Destinations    []string  `json:"destinations"`
	Mode            string    `json:"mode"`
	Backend         string    `json:"backend"`
	DistanceMeters  int       `json:"distance_meters"`
	DurationSeconds int       `json:"duration_seconds"`
	OccurredAt      time.Time `json:"occurred_at"`
}
