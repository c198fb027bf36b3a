package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/directions"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/form"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/history"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/geocode"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/apperr"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/presenter"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher publishes CloudEvents. *kafka.Producer and kafka.NopProducer satisfy it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// DestinationValue sets the text of one destination row.
type DestinationValue struct {
	ID    string `json:"id" binding:"required"`
	Value string `json:"value"`
}

// UpdateFormRequest holds a partial form update. Nil fields are left unchanged.
type UpdateFormRequest struct {
	Origin       *string            `json:"origin"`
	Destinations []DestinationValue `json:"destinations"`
	Mode         *string            `json:"mode"`
	Optimize     *bool              `json:"optimize"`
}

// FormDTO is the response representation of the input form.
type FormDTO struct {
	Origin       string       `json:"origin"`
	Destinations []form.Field `json:"destinations"`
	Mode         string       `json:"mode"`
	Optimize     bool         `json:"optimize"`
}

// RouteDTO is the response representation of the displayed route.
type RouteDTO struct {
	Backend string            `json:"backend"`
	Summary presenter.Summary `json:"summary"`
	Steps   []presenter.Step  `json:"steps"`
	Legs    []route.Leg       `json:"legs"`
}

// SessionDTO is the response representation of a planner session.
type SessionDTO struct {
	ID        uuid.UUID        `json:"id"`
	State     string           `json:"state"`
	Status    string           `json:"status"`
	Form      FormDTO          `json:"form"`
	Viewport  mapview.Viewport `json:"viewport"`
	Size      mapview.Size     `json:"size"`
	Overlays  mapview.Overlays `json:"overlays"`
	Route     *RouteDTO        `json:"route,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// HistoryDTO is the response representation of a history record.
type HistoryDTO struct {
	ID              uuid.UUID  `json:"id"`
	SessionID       *uuid.UUID `json:"session_id,omitempty"`
	Origin          string     `json:"origin"`
	Destinations    []string   `json:"destinations"`
	Mode            string     `json:"mode"`
	Optimize        bool       `json:"optimize"`
	Backend         string     `json:"backend"`
	DistanceMeters  int        `json:"distance_meters"`
	TotalDistance   string     `json:"total_distance"`
	DurationSeconds int        `json:"duration_seconds"`
	TotalDuration   string     `json:"total_duration"`
	LegCount        int        `json:"leg_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StatsDTO summarises the route history.
type StatsDTO struct {
	Total  int64            `json:"total"`
	ByMode map[string]int64 `json:"by_mode"`
}

// PlannerService is the application service orchestrating route planning use cases.
type PlannerService struct {
	sessions  mapview.SessionRepository
	history   history.Repository
	client    directions.Client
	places    directions.Places
	presenter *presenter.Presenter
	mapOpts   mapview.Options
	producer  EventPublisher
	logger    *zap.Logger
}

// NewPlannerService creates a new PlannerService.
func NewPlannerService(
	sessions mapview.SessionRepository,
	historyRepo history.Repository,
	client directions.Client,
	places directions.Places,
	p *presenter.Presenter,
	mapOpts mapview.Options,
	producer EventPublisher,
	logger *zap.Logger,
) *PlannerService {
	if producer == nil {
		producer = kafka.NopProducer{}
	}
	return &PlannerService{
		sessions:  sessions,
		history:   historyRepo,
		client:    client,
		places:    places,
		presenter: p,
		mapOpts:   mapOpts,
		producer:  producer,
		logger:    logger,
	}
}

// CreateSession opens a planner with an initialised map and one empty destination row.
func (s *PlannerService) CreateSession(ctx context.Context) (*SessionDTO, error) {
	session := mapview.NewSession(s.mapOpts)
	session.Init()

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("planner session created", zap.String("session_id", session.ID().String()))
	return toSessionDTO(session.Snapshot()), nil
}

// GetSession returns the current view state.
func (s *PlannerService) GetSession(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSessionDTO(session.Snapshot()), nil
}

// UpdateForm applies a partial form update. Nothing changes if any part is invalid.
func (s *PlannerService) UpdateForm(ctx context.Context, id uuid.UUID, req UpdateFormRequest) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var mode route.TravelMode
	if req.Mode != nil {
		mode, err = route.ParseTravelMode(*req.Mode)
		if err != nil {
			return nil, apperr.NewValidationError(err.Error())
		}
	}

	err = session.EditForm(func(f *form.Form) error {
		rows := make(map[string]bool)
		for _, field := range f.Destinations() {
			rows[field.ID] = true
		}
		for _, d := range req.Destinations {
			if !rows[d.ID] {
				return apperr.NewNotFoundError("Destination field", d.ID)
			}
		}

		if req.Origin != nil {
			f.SetOrigin(*req.Origin)
		}
		for _, d := range req.Destinations {
			if err := f.SetDestination(d.ID, d.Value); err != nil {
				return err
			}
		}
		if req.Mode != nil {
			if err := f.SetMode(mode); err != nil {
				return err
			}
		}
		if req.Optimize != nil {
			f.SetOptimize(*req.Optimize)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toSessionDTO(session.Snapshot()), nil
}

// AddDestination appends an empty destination row.
func (s *PlannerService) AddDestination(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = session.EditForm(func(f *form.Form) error {
		f.AddDestinationField()
		return nil
	})
	return toSessionDTO(session.Snapshot()), nil
}

// RemoveDestination deletes a destination row and renumbers the rest.
func (s *PlannerService) RemoveDestination(ctx context.Context, id uuid.UUID, fieldID string) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := session.EditForm(func(f *form.Form) error {
		return f.RemoveDestinationField(fieldID)
	}); err != nil {
		return nil, err
	}
	return toSessionDTO(session.Snapshot()), nil
}

// Calculate runs the full pipeline for a session: collect the form, clear the
// previous route, call the routing backend, present and display the result.
// The backend call is detached from ctx cancellation and cannot be aborted.
func (s *PlannerService) Calculate(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	input, err := session.BeginRequest()
	if err != nil {
		return nil, err
	}

	req, err := buildRequest(input)
	if err != nil {
		session.FailRequest()
		return nil, err
	}

	result, pres, err := s.plan(context.WithoutCancel(ctx), req)
	if err != nil {
		session.FailRequest()
		s.logger.Warn("route calculation failed",
			zap.String("session_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := session.CompleteRequest(result, pres.Scene); err != nil {
		return nil, err
	}

	sessionID := session.ID()
	if rec := s.recordHistory(ctx, &sessionID, req, result); rec != nil {
		s.publishRouteCalculated(ctx, sessionID, rec)
	}

	return toSessionDTO(session.Snapshot()), nil
}

// ClearRoute removes the displayed route and resets the view.
func (s *PlannerService) ClearRoute(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Clear()
	return toSessionDTO(session.Snapshot()), nil
}

// CenterMap fits the view to the current route, or resets it when there is none.
func (s *PlannerService) CenterMap(ctx context.Context, id uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Center()
	return toSessionDTO(session.Snapshot()), nil
}

// Resize records the map container size and refits the current route.
func (s *PlannerService) Resize(ctx context.Context, id uuid.UUID, size mapview.Size) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := session.Resize(size); err != nil {
		return nil, err
	}
	return toSessionDTO(session.Snapshot()), nil
}

// CloseSession discards a session.
func (s *PlannerService) CloseSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sessions.FindByID(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// ExpireSessions removes sessions idle for longer than ttl.
func (s *PlannerService) ExpireSessions(ctx context.Context, ttl time.Duration) (int, error) {
	removed, err := s.sessions.DeleteIdle(ctx, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to expire sessions: %w", err)
	}
	if removed > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", removed))
	}
	return removed, nil
}

// Suggestion limits for SuggestPlaces.
const (
	DefaultSuggestionLimit = 5
	MaxSuggestionLimit     = 10
)

// SuggestPlaces returns address suggestions for partially typed input.
// Without a places source every input has no suggestions.
func (s *PlannerService) SuggestPlaces(ctx context.Context, input string, limit int) ([]geocode.Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" || s.places == nil {
		return []geocode.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if limit > MaxSuggestionLimit {
		limit = MaxSuggestionLimit
	}

	suggestions, err := s.places.Autocomplete(ctx, input, limit)
	if err != nil {
		s.logger.Warn("place suggestions failed", zap.String("input", input), zap.Error(err))
		return nil, err
	}
	if suggestions == nil {
		suggestions = []geocode.Suggestion{}
	}
	return suggestions, nil
}

// ListHistory returns displayed routes newest first.
func (s *PlannerService) ListHistory(ctx context.Context, page, limit int) ([]HistoryDTO, int64, error) {
	records, total, err := s.history.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	dtos := make([]HistoryDTO, len(records))
	for i, rec := range records {
		dtos[i] = toHistoryDTO(rec)
	}
	return dtos, total, nil
}

// HistoryStats counts displayed routes by travel mode.
func (s *PlannerService) HistoryStats(ctx context.Context) (*StatsDTO, error) {
	counts, err := s.history.CountByMode(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &StatsDTO{Total: total, ByMode: counts}, nil
}

// PlanRoute calculates a route without a session.
func (s *PlannerService) PlanRoute(ctx context.Context, req route.Request) (*route.Result, *presenter.Presentation, error) {
	result, pres, err := s.plan(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	s.recordHistory(ctx, nil, req, result)
	return result, pres, nil
}

// HandleRouteRequested plans a route requested over Kafka and publishes the
// outcome. Planning failures are answered with a failed event; only a failure
// to publish is returned.
func (s *PlannerService) HandleRouteRequested(ctx context.Context, evt contracts.RouteRequestedEvent) error {
	req, err := requestFromEvent(evt)
	if err == nil {
		var (
			result *route.Result
			pres   *presenter.Presentation
		)
		result, pres, err = s.PlanRoute(ctx, req)
		if err == nil {
			return s.publish(ctx, contracts.TopicRouteEvents, contracts.RoutePlanned, toPlannedEvent(evt.RequestID, req, result, pres))
		}
	}

	s.logger.Warn("requested route could not be planned",
		zap.String("request_id", evt.RequestID.String()),
		zap.Error(err),
	)
	return s.publish(ctx, contracts.TopicRouteEvents, contracts.RouteFailed, contracts.RouteFailedEvent{
		RequestID:  evt.RequestID,
		Code:       errorCode(err),
		Message:    err.Error(),
		OccurredAt: time.Now().UTC(),
	})
}

func (s *PlannerService) plan(ctx context.Context, req route.Request) (*route.Result, *presenter.Presentation, error) {
	result, err := s.client.Route(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	pres, err := s.presenter.Present(result)
	if err != nil {
		return nil, nil, err
	}
	return result, pres, nil
}

// recordHistory stores the route. Failures are logged, never surfaced.
func (s *PlannerService) recordHistory(ctx context.Context, sessionID *uuid.UUID, req route.Request, result *route.Result) *history.Record {
	rec, err := history.NewRecord(sessionID, req, result)
	if err != nil {
		s.logger.Error("failed to build history record", zap.Error(err))
		return nil
	}
	if err := s.history.Save(ctx, rec); err != nil {
		s.logger.Error("failed to save history record",
			zap.String("history_id", rec.ID().String()),
			zap.Error(err),
		)
		return nil
	}
	return rec
}

func (s *PlannerService) publishRouteCalculated(ctx context.Context, sessionID uuid.UUID, rec *history.Record) {
	evt := contracts.RouteCalculatedEvent{
		SessionID:       sessionID,
		HistoryID:       rec.ID(),
		Origin:          rec.Origin(),
		Destinations:    rec.Destinations(),
		Mode:            string(rec.Mode()),
		Backend:         rec.Backend(),
		DistanceMeters:  rec.DistanceMeters(),
		DurationSeconds: rec.DurationSeconds(),
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.publish(ctx, contracts.TopicRouteEvents, contracts.RouteCalculated, evt); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", contracts.RouteCalculated),
			zap.Error(err),
		)
	}
}

func (s *PlannerService) publish(ctx context.Context, topic, eventType string, data interface{}) error {
	cloudEvent, err := kafka.NewCloudEvent(contracts.EventSource, eventType, data)
	if err != nil {
		return fmt.Errorf("failed to create cloud event: %w", err)
	}
	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

// --- Conversion Helpers ---

func buildRequest(input form.Input) (route.Request, error) {
	destinations := make([]route.Location, len(input.Destinations))
	for i, d := range input.Destinations {
		destinations[i] = route.AddressLocation(d)
	}
	return route.Build(route.AddressLocation(input.Origin), destinations, input.Mode, input.Optimize)
}

func requestFromEvent(evt contracts.RouteRequestedEvent) (route.Request, error) {
	mode, err := route.ParseTravelMode(evt.Mode)
	if err != nil {
		return route.Request{}, apperr.NewValidationError(err.Error())
	}
	destinations := make([]route.Location, len(evt.Destinations))
	for i, d := range evt.Destinations {
		destinations[i] = d.ToLocation()
	}
	return route.Build(evt.Origin.ToLocation(), destinations, mode, evt.Optimize)
}

func errorCode(err error) string {
	if kind, ok := route.KindOf(err); ok {
		return string(kind)
	}
	if kind, ok := apperr.KindOf(err); ok {
		return string(kind)
	}
	return string(route.KindUnknown)
}

func toPlannedEvent(requestID uuid.UUID, req route.Request, result *route.Result, pres *presenter.Presentation) contracts.RoutePlannedEvent {
	legs := make([]contracts.PlannedLegDTO, len(result.Legs))
	for i, leg := range result.Legs {
		legs[i] = contracts.PlannedLegDTO{
			From:            leg.StartAddress,
			To:              leg.EndAddress,
			StartLat:        leg.StartLocation.Lat,
			StartLng:        leg.StartLocation.Lng,
			EndLat:          leg.EndLocation.Lat,
			EndLng:          leg.EndLocation.Lng,
			DistanceMeters:  leg.DistanceMeters,
			DurationSeconds: leg.DurationSeconds,
		}
	}

	return contracts.RoutePlannedEvent{
		RequestID:            requestID,
		Backend:              result.Backend,
		Mode:                 string(req.Mode),
		DistanceKm:           math.Round(float64(result.TotalDistanceMeters())/100) / 10,
		EstimatedDurationMin: int(math.Ceil(float64(result.TotalDurationSeconds()) / 60)),
		TotalDistance:        pres.Summary.TotalDistance,
		TotalDuration:        pres.Summary.TotalDuration,
		Legs:                 legs,
		Polyline:             directions.EncodePolyline(result.Geometry),
		OccurredAt:           time.Now().UTC(),
	}
}

func toSessionDTO(snap mapview.Snapshot) *SessionDTO {
	dto := &SessionDTO{
		ID:     snap.ID,
		State:  string(snap.State),
		Status: string(snap.Status),
		Form: FormDTO{
			Origin:       snap.Origin,
			Destinations: snap.Destinations,
			Mode:         string(snap.Mode),
			Optimize:     snap.Optimize,
		},
		Viewport:  snap.Viewport,
		Size:      snap.Size,
		Overlays:  snap.Overlays,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
	if dto.Overlays.Markers == nil {
		dto.Overlays.Markers = []mapview.Marker{}
	}
	if snap.Route != nil {
		dto.Route = &RouteDTO{
			Backend: snap.Route.Backend,
			Summary: presenter.Summarize(snap.Route),
			Steps:   presenter.Itinerary(snap.Route),
			Legs:    snap.Route.Legs,
		}
	}
	return dto
}

func toHistoryDTO(rec *history.Record) HistoryDTO {
	return HistoryDTO{
		ID:              rec.ID(),
		SessionID:       rec.SessionID(),
		Origin:          rec.Origin(),
		Destinations:    rec.Destinations(),
		Mode:            string(rec.Mode()),
		Optimize:        rec.Optimize(),
		Backend:         rec.Backend(),
		DistanceMeters:  rec.DistanceMeters(),
		TotalDistance:   route.FormatDistance(rec.DistanceMeters()),
		DurationSeconds: rec.DurationSeconds(),
		TotalDuration:   route.FormatDuration(rec.DurationSeconds()),
		LegCount:        rec.LegCount(),
		CreatedAt:       rec.CreatedAt(),
	}
}

// IsRouteError reports whether err is a routing failure, as opposed to bad
// input or a missing session.
func IsRouteError(err error) bool {
	var routeErr *route.Error
	return errors.As(err, &routeErr)
}
