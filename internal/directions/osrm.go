package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/geocode"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// DefaultOSRMURL is the public OSRM demo server.
const DefaultOSRMURL = "https://router.project-osrm.org"

type osrmLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

type osrmRoute struct {
	Geometry geojson.Geometry `json:"geometry"`
	Legs     []osrmLeg        `json:"legs"`
	Distance float64          `json:"distance"`
	Duration float64          `json:"duration"`
}

type osrmWaypoint struct {
	Location      [2]float64 `json:"location"`
	WaypointIndex int        `json:"waypoint_index"`
	TripsIndex    int        `json:"trips_index"`
}

type osrmResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Routes    []osrmRoute    `json:"routes"`
	Trips     []osrmRoute    `json:"trips"`
	Waypoints []osrmWaypoint `json:"waypoints"`
}

type stop struct {
	label string
	coord route.Coordinate
}

// OSRMClient geocodes every stop and routes between them with OSRM.
type OSRMClient struct {
	client   *http.Client
	baseURL  string
	geocoder geocode.Geocoder
	logger   *zap.Logger
}

// NewOSRMClient creates an OSRM client. A nil httpClient gets a plain client
// without a timeout.
func NewOSRMClient(baseURL string, geocoder geocode.Geocoder, httpClient *http.Client, logger *zap.Logger) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OSRMClient{
		client:   httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		geocoder: geocoder,
		logger:   logger,
	}
}

// Name returns the backend name.
func (c *OSRMClient) Name() string { return BackendOSRM }

// Route geocodes the stops one after another, then asks OSRM for the route.
// With optimisation and at least one waypoint the trip service reorders the
// intermediate stops while keeping the first and last fixed.
func (c *OSRMClient) Route(ctx context.Context, req route.Request) (*route.Result, error) {
	profile, ok := req.Mode.OSRMProfile()
	if !ok {
		return nil, route.NewError(route.KindInvalidRequest, fmt.Errorf("travel mode %q is not supported by osrm", req.Mode))
	}
	if len(req.Waypoints) > MaxWaypoints {
		return nil, route.NewError(route.KindTooManyWaypoints, fmt.Errorf("%d waypoints", len(req.Waypoints)))
	}

	stops, err := c.resolve(ctx, req.Stops())
	if err != nil {
		return nil, err
	}

	if req.OptimizeWaypoints && len(req.Waypoints) > 0 {
		return c.trip(ctx, profile, stops)
	}
	return c.route(ctx, profile, stops)
}

func (c *OSRMClient) resolve(ctx context.Context, locations []route.Location) ([]stop, error) {
	stops := make([]stop, 0, len(locations))
	for _, loc := range locations {
		if loc.Coordinate != nil {
			stops = append(stops, stop{label: loc.Label(), coord: *loc.Coordinate})
			continue
		}
		coord, err := c.geocoder.Geocode(ctx, loc.Address)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop{label: loc.Label(), coord: coord})
	}
	return stops, nil
}

func (c *OSRMClient) route(ctx context.Context, profile string, stops []stop) (*route.Result, error) {
	resp, err := c.get(ctx, "route", profile, stops, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, route.NewError(route.KindZeroResults, fmt.Errorf("osrm returned no routes"))
	}
	return buildResult(resp.Routes[0], stops)
}

func (c *OSRMClient) trip(ctx context.Context, profile string, stops []stop) (*route.Result, error) {
	params := url.Values{}
	params.Set("source", "first")
	params.Set("destination", "last")
	params.Set("roundtrip", "false")

	resp, err := c.get(ctx, "trip", profile, stops, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Trips) == 0 {
		return nil, route.NewError(route.KindZeroResults, fmt.Errorf("osrm returned no trips"))
	}
	if len(resp.Waypoints) != len(stops) {
		return nil, route.NewError(route.KindUnknown, fmt.Errorf("osrm returned %d waypoints for %d stops", len(resp.Waypoints), len(stops)))
	}

	ordered := make([]stop, len(stops))
	for i, wp := range resp.Waypoints {
		if wp.WaypointIndex < 0 || wp.WaypointIndex >= len(stops) {
			return nil, route.NewError(route.KindUnknown, fmt.Errorf("osrm waypoint index %d out of range", wp.WaypointIndex))
		}
		ordered[wp.WaypointIndex] = stops[i]
	}
	return buildResult(resp.Trips[0], ordered)
}

func (c *OSRMClient) get(ctx context.Context, service, profile string, stops []stop, extra url.Values) (*osrmResponse, error) {
	coords := make([]string, 0, len(stops))
	for _, s := range stops {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", s.coord.Lng, s.coord.Lat))
	}

	params := url.Values{}
	params.Set("overview", "full")
	params.Set("geometries", "geojson")
	params.Set("steps", "false")
	for k, v := range extra {
		params[k] = v
	}

	endpoint := fmt.Sprintf("%s/%s/v1/%s/%s?%s", c.baseURL, service, profile, strings.Join(coords, ";"), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, route.NewError(route.KindInvalidRequest, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, route.NewError(route.KindUnknown, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, route.NewError(route.KindQuotaExceeded, fmt.Errorf("osrm returned %s", resp.Status))
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, route.NewError(route.KindAuthDenied, fmt.Errorf("osrm returned %s", resp.Status))
	}

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, route.NewError(route.KindUnknown, fmt.Errorf("failed to decode osrm response (%s): %w", resp.Status, err))
	}
	if parsed.Code != "Ok" {
		c.logger.Debug("osrm rejected request", zap.String("code", parsed.Code), zap.String("message", parsed.Message))
		return nil, route.NewError(osrmCodeKind(parsed.Code), fmt.Errorf("osrm %s: %s", parsed.Code, parsed.Message))
	}
	return &parsed, nil
}

func buildResult(r osrmRoute, stops []stop) (*route.Result, error) {
	if len(r.Legs) != len(stops)-1 {
		return nil, route.NewError(route.KindUnknown, fmt.Errorf("osrm returned %d legs for %d stops", len(r.Legs), len(stops)))
	}

	result := &route.Result{Backend: BackendOSRM, Legs: make([]route.Leg, 0, len(r.Legs))}
	for i, leg := range r.Legs {
		meters := int(math.Round(leg.Distance))
		seconds := int(math.Round(leg.Duration))
		result.Legs = append(result.Legs, route.Leg{
			StartLocation:   stops[i].coord,
			EndLocation:     stops[i+1].coord,
			StartAddress:    stops[i].label,
			EndAddress:      stops[i+1].label,
			DistanceMeters:  meters,
			DistanceText:    route.FormatDistance(meters),
			DurationSeconds: seconds,
			DurationText:    route.FormatDuration(seconds),
		})
	}

	if line, ok := r.Geometry.Geometry().(orb.LineString); ok {
		result.Geometry = line
	}
	return result, nil
}

func osrmCodeKind(code string) route.ErrorKind {
	switch {
	case code == "NoRoute", code == "NoTrips":
		return route.KindZeroResults
	case code == "NoSegment", code == "NoMatch":
		return route.KindNotFound
	case code == "TooBig":
		return route.KindTooManyWaypoints
	case strings.HasPrefix(code, "Invalid"), code == "NotImplemented":
		return route.KindInvalidRequest
	default:
		return route.KindUnknown
	}
}
