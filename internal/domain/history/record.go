// Package history keeps an audit trail of displayed routes.
package history

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/google/uuid"
)

// Record is one successfully calculated route.
type Record struct {
	id           uuid.UUID
	sessionID    *uuid.UUID
	origin       string
	destinations []string
	mode         route.TravelMode
	optimize     bool
	backend      string

	distanceMeters  int
	durationSeconds int
	legCount        int

	createdAt time.Time
}

// NewRecord captures a result. sessionID is nil for stateless (event-driven) plans.
func NewRecord(sessionID *uuid.UUID, req route.Request, result *route.Result) (*Record, error) {
	if result == nil || len(result.Legs) == 0 {
		return nil, apperr.NewValidationError("route result has no legs")
	}

	destinations := make([]string, 0, len(req.Waypoints)+1)
	for _, wp := range req.Waypoints {
		destinations = append(destinations, wp.Label())
	}
	destinations = append(destinations, req.Destination.Label())

	return &Record{
		id:              uuid.New(),
		sessionID:       sessionID,
		origin:          req.Origin.Label(),
		destinations:    destinations,
		mode:            req.Mode,
		optimize:        req.OptimizeWaypoints,
		backend:         result.Backend,
		distanceMeters:  result.TotalDistanceMeters(),
		durationSeconds: result.TotalDurationSeconds(),
		legCount:        len(result.Legs),
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructRecord rebuilds a Record from persistence data (no validation).
func ReconstructRecord(
	id uuid.UUID,
	sessionID *uuid.UUID,
	origin string,
	destinations []string,
	mode route.TravelMode,
	optimize bool,
	backend string,
	distanceMeters, durationSeconds, legCount int,
	createdAt time.Time,
) *Record {
	return &Record{
		id:              id,
		sessionID:       sessionID,
		origin:          origin,
		destinations:    destinations,
		mode:            mode,
		optimize:        optimize,
		backend:         backend,
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		legCount:        legCount,
		createdAt:       createdAt,
	}
}

// --- Getters ---

// ID returns the record identifier.
func (r *Record) ID() uuid.UUID { return r.id }

// SessionID returns the planner session, or nil for event-driven plans.
func (r *Record) SessionID() *uuid.UUID { return r.sessionID }

// Origin returns the starting point as entered.
func (r *Record) Origin() string { return r.origin }

// Destinations returns the stops after the origin in request order.
func (r *Record) Destinations() []string { return r.destinations }

// Mode returns the travel mode.
func (r *Record) Mode() route.TravelMode { return r.mode }

// Optimize reports whether waypoint optimisation was requested.
func (r *Record) Optimize() bool { return r.optimize }

// Backend returns the routing backend that produced the route.
func (r *Record) Backend() string { return r.backend }

// DistanceMeters returns the total route distance.
func (r *Record) DistanceMeters() int { return r.distanceMeters }

// DurationSeconds returns the total route duration.
func (r *Record) DurationSeconds() int { return r.durationSeconds }

// LegCount returns the number of legs.
func (r *Record) LegCount() int { return r.legCount }

// CreatedAt returns when the route was displayed.
func (r *Record) CreatedAt() time.Time { return r.createdAt }
