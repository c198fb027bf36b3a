package directions

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/geocode"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"
)

// Places suggests places for partially typed address input. Errors are *route.Error.
type Places interface {
	Autocomplete(ctx context.Context, input string, limit int) ([]geocode.Suggestion, error)
}

// NewPlaces builds the suggestion source matching the routing backend.
func NewPlaces(opts Options, logger *zap.Logger) (Places, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Backend {
	case BackendGoogle:
		return NewGooglePlaces(opts.GoogleAPIKey, opts.GoogleBaseURL, opts.HTTPClient, logger)
	case BackendOSRM, "":
		return geocode.NewNominatimGeocoder(opts.NominatimURL, opts.NominatimUserAgent, opts.HTTPClient, logger), nil
	default:
		return nil, fmt.Errorf("unknown routing backend: %q", opts.Backend)
	}
}

// GooglePlaces calls the Google Places Autocomplete API.
type GooglePlaces struct {
	maps   *maps.Client
	logger *zap.Logger
}

// NewGooglePlaces creates a Places Autocomplete client for apiKey.
func NewGooglePlaces(apiKey, baseURL string, httpClient *http.Client, logger *zap.Logger) (*GooglePlaces, error) {
	g, err := NewGoogleClient(apiKey, baseURL, httpClient, logger)
	if err != nil {
		return nil, err
	}
	return &GooglePlaces{maps: g.maps, logger: g.logger}, nil
}

// Autocomplete returns at most limit predictions. No type filter is sent, so
// both addresses and establishments are suggested.
func (g *GooglePlaces) Autocomplete(ctx context.Context, input string, limit int) ([]geocode.Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []geocode.Suggestion{}, nil
	}

	resp, err := g.maps.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{Input: input})
	if err != nil {
		g.logger.Debug("place autocomplete failed", zap.String("input", input), zap.Error(err))
		return nil, route.NewError(googleErrorKind(err), err)
	}

	predictions := resp.Predictions
	if limit > 0 && len(predictions) > limit {
		predictions = predictions[:limit]
	}
	suggestions := make([]geocode.Suggestion, 0, len(predictions))
	for _, p := range predictions {
		suggestions = append(suggestions, geocode.Suggestion{
			Description: p.Description,
			PlaceID:     p.PlaceID,
		})
	}
	return suggestions, nil
}
