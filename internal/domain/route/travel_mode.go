package route

import (
	"fmt"
	"strings"
)

// TravelMode is the means of transport used for routing.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeCycling TravelMode = "cycling"
	ModeTransit TravelMode = "transit"
)

// IsValid returns true if the travel mode is recognized.
func (m TravelMode) IsValid() bool {
	switch m {
	case ModeDriving, ModeWalking, ModeCycling, ModeTransit:
		return true
	}
	return false
}

// OSRMProfile returns the OSRM profile for the mode. Transit has none.
func (m TravelMode) OSRMProfile() (string, bool) {
	switch m {
	case ModeDriving:
		return "driving", true
	case ModeWalking:
		return "walking", true
	case ModeCycling:
		return "cycling", true
	}
	return "", false
}

// ParseTravelMode accepts the form values in any case ("DRIVING", "bicycling" included).
// An empty value defaults to driving.
func ParseTravelMode(s string) (TravelMode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "":
		return ModeDriving, nil
	case "bicycling", "bicycle", "bike":
		return ModeCycling, nil
	case "foot":
		return ModeWalking, nil
	}
	mode := TravelMode(v)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid travel mode: %s", s)
	}
	return mode, nil
}
