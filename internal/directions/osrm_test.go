package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	coords map[route.Address]route.Coordinate
	calls  []route.Address
}

func (f *fakeGeocoder) Geocode(_ context.Context, address route.Address) (route.Coordinate, error) {
	f.calls = append(f.calls, address)
	c, ok := f.coords[address]
	if !ok {
		return route.Coordinate{}, route.NewError(route.KindNotFound, fmt.Errorf("no match"))
	}
	return c, nil
}

func eastCoast() *fakeGeocoder {
	return &fakeGeocoder{coords: map[route.Address]route.Coordinate{
		"New York":     {Lat: 40.7128, Lng: -74.0060},
		"Hartford":     {Lat: 41.7658, Lng: -72.6734},
		"Providence":   {Lat: 41.8240, Lng: -71.4128},
		"Boston":       {Lat: 42.3601, Lng: -71.0589},
		"Philadelphia": {Lat: 39.9526, Lng: -75.1652},
	}}
}

func buildRequest(t *testing.T, mode route.TravelMode, optimize bool, origin string, destinations ...string) route.Request {
	t.Helper()
	locs := make([]route.Location, 0, len(destinations))
	for _, d := range destinations {
		locs = append(locs, route.AddressLocation(route.Address(d)))
	}
	req, err := route.Build(route.AddressLocation(route.Address(origin)), locs, mode, optimize)
	require.NoError(t, err)
	return req
}

func osrmServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

const nyBostonRoute = `{
  "code": "Ok",
  "routes": [{
    "geometry": {"type": "LineString", "coordinates": [[-74.006, 40.7128], [-72.6734, 41.7658], [-71.0589, 42.3601]]},
    "legs": [{"distance": 346120.4, "duration": 12945.2}],
    "distance": 346120.4,
    "duration": 12945.2
  }],
  "waypoints": [{"location": [-74.006, 40.7128]}, {"location": [-71.0589, 42.3601]}]
}`

func TestOSRM_Route(t *testing.T) {
	geo := eastCoast()
	base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/route/v1/driving/-74.006000,40.712800;-71.058900,42.360100", r.URL.Path)
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
		_, _ = w.Write([]byte(nyBostonRoute))
	})

	c := NewOSRMClient(base, geo, nil, nil)
	result, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, false, "New York", "Boston"))
	require.NoError(t, err)

	assert.Equal(t, []route.Address{"New York", "Boston"}, geo.calls)
	assert.Equal(t, BackendOSRM, result.Backend)
	require.Len(t, result.Legs, 1)
	leg := result.Legs[0]
	assert.Equal(t, "New York", leg.StartAddress)
	assert.Equal(t, "Boston", leg.EndAddress)
	assert.Equal(t, 346120, leg.DistanceMeters)
	assert.Equal(t, "346.1 km", leg.DistanceText)
	assert.Equal(t, "3h 35m", leg.DurationText)
	assert.Len(t, result.Geometry, 3)
	assert.InDelta(t, 41.7658, result.Geometry[1].Lat(), 1e-9)
}

func TestOSRM_SlowServerStillRoutes(t *testing.T) {
	base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(nyBostonRoute))
	})

	c := NewOSRMClient(base, eastCoast(), nil, nil)
	assert.Zero(t, c.client.Timeout)

	result, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, false, "New York", "Boston"))
	require.NoError(t, err)
	assert.Len(t, result.Legs, 1)
}

func TestOSRM_CyclingProfile(t *testing.T) {
	base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/route/v1/cycling/"))
		_, _ = w.Write([]byte(nyBostonRoute))
	})

	c := NewOSRMClient(base, eastCoast(), nil, nil)
	_, err := c.Route(context.Background(), buildRequest(t, route.ModeCycling, false, "New York", "Boston"))
	require.NoError(t, err)
}

func TestOSRM_TripReordersWaypoints(t *testing.T) {
	base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/trip/v1/driving/"))
		assert.Equal(t, "first", r.URL.Query().Get("source"))
		assert.Equal(t, "last", r.URL.Query().Get("destination"))
		assert.Equal(t, "false", r.URL.Query().Get("roundtrip"))
		// input order: New York, Providence, Hartford, Boston
		// trip order:  New York, Hartford, Providence, Boston
		_, _ = w.Write([]byte(`{
		  "code": "Ok",
		  "trips": [{
		    "geometry": {"type": "LineString", "coordinates": [[-74.006, 40.7128], [-71.0589, 42.3601]]},
		    "legs": [{"distance": 180000, "duration": 7200}, {"distance": 120000, "duration": 4800}, {"distance": 80000, "duration": 3600}]
		  }],
		  "waypoints": [
		    {"location": [-74.006, 40.7128], "waypoint_index": 0, "trips_index": 0},
		    {"location": [-71.4128, 41.824], "waypoint_index": 2, "trips_index": 0},
		    {"location": [-72.6734, 41.7658], "waypoint_index": 1, "trips_index": 0},
		    {"location": [-71.0589, 42.3601], "waypoint_index": 3, "trips_index": 0}
		  ]
		}`))
	})

	c := NewOSRMClient(base, eastCoast(), nil, nil)
	result, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, true, "New York", "Providence", "Hartford", "Boston"))
	require.NoError(t, err)

	require.Len(t, result.Legs, 3)
	assert.Equal(t, "New York", result.Legs[0].StartAddress)
	assert.Equal(t, "Hartford", result.Legs[0].EndAddress)
	assert.Equal(t, "Providence", result.Legs[1].EndAddress)
	assert.Equal(t, "Boston", result.Legs[2].EndAddress)
}

func TestOSRM_OptimizeWithoutWaypointsUsesRoute(t *testing.T) {
	base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/route/v1/"))
		_, _ = w.Write([]byte(nyBostonRoute))
	})

	c := NewOSRMClient(base, eastCoast(), nil, nil)
	_, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, true, "New York", "Boston"))
	require.NoError(t, err)
}

func TestOSRM_TransitIsInvalid(t *testing.T) {
	geo := eastCoast()
	c := NewOSRMClient("http://127.0.0.1:1", geo, nil, nil)

	_, err := c.Route(context.Background(), buildRequest(t, route.ModeTransit, false, "New York", "Boston"))
	assert.True(t, errors.Is(err, route.ErrInvalidRequest))
	assert.Empty(t, geo.calls)
}

func TestOSRM_GeocodeFailureStopsChain(t *testing.T) {
	geo := eastCoast()
	c := NewOSRMClient("http://127.0.0.1:1", geo, nil, nil)

	_, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, false, "Atlantis", "Boston"))
	assert.True(t, errors.Is(err, route.ErrNotFound))
	assert.Equal(t, []route.Address{"Atlantis"}, geo.calls)
}

func TestOSRM_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *route.Error
	}{
		{"no route", http.StatusBadRequest, `{"code":"NoRoute","message":"Impossible route"}`, route.ErrZeroResults},
		{"no segment", http.StatusBadRequest, `{"code":"NoSegment","message":"Could not find a matching segment"}`, route.ErrNotFound},
		{"too big", http.StatusBadRequest, `{"code":"TooBig","message":"Too many coordinates"}`, route.ErrTooManyWaypoints},
		{"invalid", http.StatusBadRequest, `{"code":"InvalidQuery","message":"Query string malformed"}`, route.ErrInvalidRequest},
		{"rate limited", http.StatusTooManyRequests, `slow down`, route.ErrQuotaExceeded},
		{"forbidden", http.StatusForbidden, `no`, route.ErrAuthDenied},
		{"garbage", http.StatusBadGateway, `<html>`, route.ErrUnknown},
		{"empty routes", http.StatusOK, `{"code":"Ok","routes":[]}`, route.ErrZeroResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := osrmServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			c := NewOSRMClient(base, eastCoast(), nil, nil)
			_, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, false, "New York", "Boston"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, tt.want.Error(), err.Error())
		})
	}
}

func TestOSRM_TooManyWaypoints(t *testing.T) {
	destinations := make([]string, MaxWaypoints+2)
	for i := range destinations {
		destinations[i] = "Boston"
	}
	c := NewOSRMClient("http://127.0.0.1:1", eastCoast(), nil, nil)

	_, err := c.Route(context.Background(), buildRequest(t, route.ModeDriving, false, "New York", destinations...))
	assert.True(t, errors.Is(err, route.ErrTooManyWaypoints))
}

func TestNew_SelectsBackend(t *testing.T) {
	c, err := New(Options{Backend: BackendOSRM}, nil)
	require.NoError(t, err)
	assert.Equal(t, BackendOSRM, c.Name())

	c, err = New(Options{Backend: BackendGoogle, GoogleAPIKey: "AIza-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, BackendGoogle, c.Name())

	_, err = New(Options{Backend: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
