package mapview

import (
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/form"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// State is the lifecycle of the map itself.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateReady         State = "ready"
)

// Options configure the default view and fitting behaviour.
type Options struct {
	DefaultCenter route.Coordinate
	DefaultZoom   int
	FitPadding    int
	MaxZoom       int
	DefaultSize   Size
}

// DefaultOptions centres on New York City at zoom 10 with 20px fit padding.
func DefaultOptions() Options {
	return Options{
		DefaultCenter: route.Coordinate{Lat: 40.7128, Lng: -74.0060},
		DefaultZoom:   10,
		FitPadding:    20,
		MaxZoom:       18,
		DefaultSize:   Size{Width: 800, Height: 600},
	}
}

// Session is one user's planner: the form, the map view and at most one current route.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	opts     Options
	state    State
	status   RouteStatus
	form     *form.Form
	viewport Viewport
	size     Size
	overlays Overlays
	current  *route.Result
	bounds   *orb.Bound

	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates an uninitialized session.
func NewSession(opts Options) *Session {
	now := time.Now().UTC()
	return &Session{
		id:        uuid.New(),
		opts:      opts,
		state:     StateUninitialized,
		status:    StatusIdle,
		form:      form.New(),
		createdAt: now,
		updatedAt: now,
	}
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	ID           uuid.UUID
	State        State
	Status       RouteStatus
	Origin       string
	Destinations []form.Field
	Mode         route.TravelMode
	Optimize     bool
	Viewport     Viewport
	Size         Size
	Overlays     Overlays
	Route        *route.Result
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// UpdatedAt returns when the session was last changed.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	overlays := Overlays{Line: s.overlays.Line}
	if len(s.overlays.Markers) > 0 {
		overlays.Markers = append([]Marker(nil), s.overlays.Markers...)
	}

	return Snapshot{
		ID:           s.id,
		State:        s.state,
		Status:       s.status,
		Origin:       s.form.Origin(),
		Destinations: s.form.Destinations(),
		Mode:         s.form.Mode(),
		Optimize:     s.form.Optimize(),
		Viewport:     s.viewport,
		Size:         s.size,
		Overlays:     overlays,
		Route:        s.current,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
}

// Init creates the map at the default view. Calling it again does nothing.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateReady {
		return
	}
	s.state = StateReady
	s.size = s.opts.DefaultSize
	s.resetViewport()
	s.touch()
}

// EditForm applies fn to the form under the session lock.
func (s *Session) EditForm(fn func(f *form.Form) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.form); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Clear removes the current route and resets the view. Safe to call with no route.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

// Resize records a new container size and refits the current route.
// It does nothing before Init.
func (s *Session) Resize(size Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil
	}
	if size.Width <= 0 || size.Height <= 0 {
		return apperr.NewValidationError("map size must be positive")
	}
	s.size = size
	if s.bounds != nil {
		s.viewport = fitViewport(*s.bounds, s.size, s.opts.FitPadding, s.opts.MaxZoom)
	}
	s.touch()
	return nil
}

// Center fits the current route, or returns to the default view when there is none.
func (s *Session) Center() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bounds != nil {
		s.viewport = fitViewport(*s.bounds, s.size, s.opts.FitPadding, s.opts.MaxZoom)
	} else {
		s.resetViewport()
	}
	s.touch()
}

// BeginRequest validates the form, tears down the previous route and marks the
// session as requesting. A session already requesting is refused.
func (s *Session) BeginRequest() (form.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return form.Input{}, apperr.NewInvalidStateError(string(s.state), string(StatusRequesting))
	}
	if s.status == StatusRequesting {
		return form.Input{}, apperr.NewConflictError("A route calculation is already in progress")
	}

	input, err := s.form.Collect()
	if err != nil {
		return form.Input{}, err
	}

	s.clearLocked()
	s.status = StatusRequesting
	s.touch()
	return input, nil
}

// CompleteRequest installs a freshly calculated route, replacing any overlays
// still on the map, and fits the view to it.
func (s *Session) CompleteRequest(result *route.Result, scene Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status.CanTransitionTo(StatusDisplayed) {
		return apperr.NewInvalidStateError(string(s.status), string(StatusDisplayed))
	}

	s.overlays = Overlays{}
	s.overlays.Line = scene.Line
	s.overlays.Markers = append([]Marker(nil), scene.Markers...)
	s.current = result

	b := scene.Bounds
	s.bounds = &b
	s.viewport = fitViewport(b, s.size, s.opts.FitPadding, s.opts.MaxZoom)
	s.status = StatusDisplayed
	s.touch()
	return nil
}

// FailRequest records a failed calculation. Nothing is retained: the session
// passes through failed straight back to idle.
func (s *Session) FailRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.CanTransitionTo(StatusFailed) {
		s.status = StatusFailed
	}
	if s.status.CanTransitionTo(StatusIdle) {
		s.status = StatusIdle
	}
	s.touch()
}

func (s *Session) clearLocked() {
	s.overlays = Overlays{}
	s.current = nil
	s.bounds = nil
	if s.state == StateReady {
		s.resetViewport()
	}
	if s.status.CanTransitionTo(StatusIdle) {
		s.status = StatusIdle
	}
	s.touch()
}

func (s *Session) resetViewport() {
	s.viewport = Viewport{Center: s.opts.DefaultCenter, Zoom: s.opts.DefaultZoom}
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}
