package mapview

import "fmt"

// RouteStatus is the lifecycle of a single route calculation within a session.
type RouteStatus string

const (
	StatusIdle       RouteStatus = "idle"
	StatusRequesting RouteStatus = "requesting"
	StatusDisplayed  RouteStatus = "displayed"
	StatusFailed     RouteStatus = "failed"
)

// validTransitions defines the state machine for route status transitions.
// Displayed goes back to idle on clear or before the next request; failed
// returns to idle as soon as the error is surfaced.
var validTransitions = map[RouteStatus][]RouteStatus{
	StatusIdle:       {StatusRequesting},
	StatusRequesting: {StatusDisplayed, StatusFailed},
	StatusDisplayed:  {StatusIdle},
	StatusFailed:     {StatusIdle},
}

// IsValid returns true if the status is a recognized route status.
func (s RouteStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s RouteStatus) CanTransitionTo(target RouteStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// String returns the string representation of the status.
func (s RouteStatus) String() string {
	return string(s)
}

// ParseRouteStatus converts a string to a RouteStatus, returning an error if invalid.
func ParseRouteStatus(s string) (RouteStatus, error) {
	status := RouteStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid route status: %s", s)
	}
	return status, nil
}
