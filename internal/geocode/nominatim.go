// Package geocode resolves free-text addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"go.uber.org/zap"
)

// DefaultNominatimURL is the public OpenStreetMap instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves one address to one coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, address route.Address) (route.Coordinate, error)
}

// Suggestion is one candidate place for partially typed input.
type Suggestion struct {
	Description string            `json:"description"`
	PlaceID     string            `json:"place_id,omitempty"`
	Location    *route.Coordinate `json:"location,omitempty"`
}

// nominatimResult mirrors the part of the /search payload we read.
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	PlaceID     int64  `json:"place_id"`
}

// NominatimGeocoder queries a Nominatim /search endpoint.
type NominatimGeocoder struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

// NewNominatimGeocoder creates a geocoder. A nil client gets a plain client
// without a timeout; lookups end only when ctx does.
func NewNominatimGeocoder(baseURL, userAgent string, client *http.Client, logger *zap.Logger) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NominatimGeocoder{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger,
	}
}

// Geocode returns the first match for address. Every failure, including no
// match at all, is reported as a route NotFound error.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address route.Address) (route.Coordinate, error) {
	address = address.Normalize()
	if address == "" {
		return route.Coordinate{}, route.NewError(route.KindNotFound, fmt.Errorf("empty address"))
	}

	coord, err := g.search(ctx, address)
	if err != nil {
		g.logger.Debug("geocoding failed", zap.String("address", string(address)), zap.Error(err))
		return route.Coordinate{}, route.NewError(route.KindNotFound, err)
	}
	return coord, nil
}

// Autocomplete returns up to limit places matching input. Blank input yields
// no suggestions without a request; failures are route Unknown errors.
func (g *NominatimGeocoder) Autocomplete(ctx context.Context, input string, limit int) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []Suggestion{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	results, err := g.query(ctx, input, limit)
	if err != nil {
		g.logger.Debug("autocomplete failed", zap.String("input", input), zap.Error(err))
		return nil, route.NewError(route.KindUnknown, err)
	}

	suggestions := make([]Suggestion, 0, len(results))
	for _, r := range results {
		s := Suggestion{Description: r.DisplayName}
		if r.PlaceID != 0 {
			s.PlaceID = strconv.FormatInt(r.PlaceID, 10)
		}
		if coord, err := r.coordinate(); err == nil {
			s.Location = &coord
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, address route.Address) (route.Coordinate, error) {
	results, err := g.query(ctx, string(address), 1)
	if err != nil {
		return route.Coordinate{}, err
	}
	if len(results) == 0 {
		return route.Coordinate{}, fmt.Errorf("no match for %q", address)
	}
	return results[0].coordinate()
}

func (g *NominatimGeocoder) query(ctx context.Context, q string, limit int) ([]nominatimResult, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned error: %s", resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return results, nil
}

func (r nominatimResult) coordinate() (route.Coordinate, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return route.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return route.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}

	coord := route.Coordinate{Lat: lat, Lng: lng}
	if !coord.IsValid() {
		return route.Coordinate{}, fmt.Errorf("coordinate out of range: %s", coord)
	}
	return coord, nil
}
