package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func googlePlaces(t *testing.T, handler http.HandlerFunc) *GooglePlaces {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	p, err := NewGooglePlaces("test-key", srv.URL, srv.Client(), nil)
	require.NoError(t, err)
	return p
}

func TestGooglePlaces_Autocomplete(t *testing.T) {
	p := googlePlaces(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/autocomplete/json", r.URL.Path)
		assert.Equal(t, "Bost", r.URL.Query().Get("input"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "status": "OK",
		  "predictions": [
		    {"description": "Boston, MA, USA", "place_id": "ChIJGzE9DS1l44kRoOhiASS_fHg"},
		    {"description": "Boston Logan International Airport, Boston, MA, USA", "place_id": "ChIJN0na1RRw44kRRFEtH8OUkww"},
		    {"description": "Boston Common, Boston, MA, USA", "place_id": "ChIJLVFnA4Vw44kRK6Y2DXT0lNs"}
		  ]
		}`))
	})

	suggestions, err := p.Autocomplete(context.Background(), "Bost", 2)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Boston, MA, USA", suggestions[0].Description)
	assert.Equal(t, "ChIJGzE9DS1l44kRoOhiASS_fHg", suggestions[0].PlaceID)
	assert.Nil(t, suggestions[0].Location)
	assert.Equal(t, "Boston Logan International Airport, Boston, MA, USA", suggestions[1].Description)
}

func TestGooglePlaces_ZeroResults(t *testing.T) {
	p := googlePlaces(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "predictions": []}`))
	})

	suggestions, err := p.Autocomplete(context.Background(), "zzzzqx", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestGooglePlaces_RequestDenied(t *testing.T) {
	p := googlePlaces(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid.", "predictions": []}`))
	})

	_, err := p.Autocomplete(context.Background(), "Bost", 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, route.ErrAuthDenied))
}

func TestGooglePlaces_BlankInputSkipsNetwork(t *testing.T) {
	var called atomic.Bool
	p := googlePlaces(t, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})

	suggestions, err := p.Autocomplete(context.Background(), " ", 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
	assert.False(t, called.Load())
}

func TestNewPlaces_SelectsBackend(t *testing.T) {
	p, err := NewPlaces(Options{Backend: BackendOSRM}, nil)
	require.NoError(t, err)
	assert.IsType(t, &geocode.NominatimGeocoder{}, p)

	p, err = NewPlaces(Options{Backend: BackendGoogle, GoogleAPIKey: "test-key"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &GooglePlaces{}, p)

	_, err = NewPlaces(Options{Backend: "mapquest"}, nil)
	assert.Error(t, err)
}
