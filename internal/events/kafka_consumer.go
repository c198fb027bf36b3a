package events

import (
	"context"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/contracts"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RouteRequestHandler plans a requested route and publishes the outcome.
type RouteRequestHandler interface {
	HandleRouteRequested(ctx context.Context, evt contracts.RouteRequestedEvent) error
}

// RouteRequestConsumer listens for route requests from other services.
type RouteRequestConsumer struct {
	consumer *kafka.Consumer
	handler  RouteRequestHandler
	logger   *zap.Logger
}

// NewRouteRequestConsumer creates a new RouteRequestConsumer.
func NewRouteRequestConsumer(
	brokers []string,
	groupID string,
	handler RouteRequestHandler,
	logger *zap.Logger,
) *RouteRequestConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contracts.TopicRouteRequests, logger)
	return &RouteRequestConsumer{
		consumer: consumer,
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming route requests. This blocks until the context is cancelled.
func (c *RouteRequestConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *RouteRequestConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RouteRequestConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from route request topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contracts.RouteRequested:
		return c.handleRouteRequested(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled route event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *RouteRequestConsumer) handleRouteRequested(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contracts.RouteRequestedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse RouteRequestedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing route requested event",
		zap.String("request_id", evt.RequestID.String()),
		zap.Int("destinations", len(evt.Destinations)),
	)

	if err := c.handler.HandleRouteRequested(ctx, evt); err != nil {
		c.logger.Error("failed to answer route request",
			zap.String("request_id", evt.RequestID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
