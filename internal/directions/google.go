package directions

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// GoogleClient calls the Google Directions API.
type GoogleClient struct {
	maps   *maps.Client
	logger *zap.Logger
}

// NewGoogleClient creates a client for apiKey. baseURL and httpClient are optional.
func NewGoogleClient(apiKey, baseURL string, httpClient *http.Client, logger *zap.Logger) (*GoogleClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, maps.WithHTTPClient(httpClient))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google maps client: %w", err)
	}
	return &GoogleClient{maps: c, logger: logger}, nil
}

// Name returns the backend name.
func (g *GoogleClient) Name() string { return BackendGoogle }

// Route requests directions with metric units and maps the first returned route.
func (g *GoogleClient) Route(ctx context.Context, req route.Request) (*route.Result, error) {
	waypoints := make([]string, 0, len(req.Waypoints))
	for _, wp := range req.Waypoints {
		waypoints = append(waypoints, wp.Label())
	}

	dr := &maps.DirectionsRequest{
		Origin:      req.Origin.Label(),
		Destination: req.Destination.Label(),
		Waypoints:   waypoints,
		Mode:        googleMode(req.Mode),
		Optimize:    req.OptimizeWaypoints,
		Units:       maps.UnitsMetric,
	}

	routes, _, err := g.maps.Directions(ctx, dr)
	if err != nil {
		return nil, route.NewError(googleErrorKind(err), err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, route.NewError(route.KindZeroResults, fmt.Errorf("directions returned no routes"))
	}

	r := routes[0]
	result := &route.Result{Backend: BackendGoogle, Legs: make([]route.Leg, 0, len(r.Legs))}
	for _, leg := range r.Legs {
		seconds := int(leg.Duration / time.Second)
		result.Legs = append(result.Legs, route.Leg{
			StartLocation:   route.Coordinate{Lat: leg.StartLocation.Lat, Lng: leg.StartLocation.Lng},
			EndLocation:     route.Coordinate{Lat: leg.EndLocation.Lat, Lng: leg.EndLocation.Lng},
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DistanceMeters:  leg.Meters,
			DistanceText:    leg.HumanReadable,
			DurationSeconds: seconds,
			DurationText:    route.FormatDuration(seconds),
		})
	}

	path, err := r.OverviewPolyline.Decode()
	if err != nil {
		g.logger.Warn("failed to decode overview polyline", zap.Error(err))
	} else {
		line := make(orb.LineString, 0, len(path))
		for _, p := range path {
			line = append(line, orb.Point{p.Lng, p.Lat})
		}
		result.Geometry = line
	}

	return result, nil
}

func googleMode(m route.TravelMode) maps.Mode {
	switch m {
	case route.ModeWalking:
		return maps.TravelModeWalking
	case route.ModeCycling:
		return maps.TravelModeBicycling
	case route.ModeTransit:
		return maps.TravelModeTransit
	default:
		return maps.TravelModeDriving
	}
}

// googleErrorKind reads the status out of the client's "maps: STATUS - message" errors.
func googleErrorKind(err error) route.ErrorKind {
	msg, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return route.KindUnknown
	}
	status, _, _ := strings.Cut(msg, " - ")
	return googleStatusKind(strings.TrimSpace(status))
}

func googleStatusKind(status string) route.ErrorKind {
	switch status {
	case "NOT_FOUND":
		return route.KindNotFound
	case "ZERO_RESULTS":
		return route.KindZeroResults
	case "MAX_WAYPOINTS_EXCEEDED":
		return route.KindTooManyWaypoints
	case "MAX_ROUTE_LENGTH_EXCEEDED":
		return route.KindRouteTooLong
	case "INVALID_REQUEST":
		return route.KindInvalidRequest
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return route.KindQuotaExceeded
	case "REQUEST_DENIED":
		return route.KindAuthDenied
	default:
		return route.KindUnknown
	}
}

// EncodePolyline renders a route line in the encoded polyline format used by
// Google and most map front-ends. An empty line encodes to "".
func EncodePolyline(line orb.LineString) string {
	if len(line) == 0 {
		return ""
	}
	path := make([]maps.LatLng, len(line))
	for i, p := range line {
		path[i] = maps.LatLng{Lat: p.Lat(), Lng: p.Lon()}
	}
	return maps.Encode(path)
}
