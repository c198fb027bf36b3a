// Package directions calculates routes through a commercial (Google) or a free
// (Nominatim + OSRM) backend behind one interface.
package directions

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/geocode"
	"go.uber.org/zap"
)

const (
	BackendGoogle = "google"
	BackendOSRM   = "osrm"
)

// MaxWaypoints is the most intermediate stops a request may carry.
const MaxWaypoints = 23

// Client resolves one route request to one result. Errors are *route.Error.
type Client interface {
	Route(ctx context.Context, req route.Request) (*route.Result, error)
	Name() string
}

// Options select and configure a backend.
type Options struct {
	Backend            string
	GoogleAPIKey       string
	GoogleBaseURL      string
	NominatimURL       string
	NominatimUserAgent string
	OSRMURL            string
	HTTPClient         *http.Client
}

// New builds the configured backend wrapped with request logging.
func New(opts Options, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		c   Client
		err error
	)
	switch opts.Backend {
	case BackendGoogle:
		c, err = NewGoogleClient(opts.GoogleAPIKey, opts.GoogleBaseURL, opts.HTTPClient, logger)
	case BackendOSRM, "":
		geocoder := geocode.NewNominatimGeocoder(opts.NominatimURL, opts.NominatimUserAgent, opts.HTTPClient, logger)
		c = NewOSRMClient(opts.OSRMURL, geocoder, opts.HTTPClient, logger)
	default:
		return nil, fmt.Errorf("unknown routing backend: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &loggingClient{next: c, logger: logger}, nil
}

type loggingClient struct {
	next   Client
	logger *zap.Logger
}

func (l *loggingClient) Name() string { return l.next.Name() }

func (l *loggingClient) Route(ctx context.Context, req route.Request) (*route.Result, error) {
	start := time.Now()
	result, err := l.next.Route(ctx, req)
	fields := []zap.Field{
		zap.String("backend", l.next.Name()),
		zap.String("mode", string(req.Mode)),
		zap.Int("waypoints", len(req.Waypoints)),
		zap.Bool("optimize", req.OptimizeWaypoints),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		l.logger.Warn("route calculation failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	l.logger.Info("route calculated", append(fields, zap.Int("legs", len(result.Legs)))...)
	return result, nil
}
