package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/platform/events"
	"github.com/wayfarer-maps/service-routing/internal/prices"
)

// UserEventConsumer listens to user session events and warms the price
// cache so the first route request of a session gets a fresh snapshot
// without paying the feed latency.
type UserEventConsumer struct {
	consumer *events.Consumer
	gateway  *prices.Gateway
	logger   *zap.Logger
}

// NewUserEventConsumer creates a new UserEventConsumer.
func NewUserEventConsumer(
	brokers []string,
	groupID string,
	gateway *prices.Gateway,
	logger *zap.Logger,
) *UserEventConsumer {
	consumer := events.NewConsumer(brokers, groupID, events.TopicUserEvents, logger)
	return &UserEventConsumer{
		consumer: consumer,
		gateway:  gateway,
		logger:   logger,
	}
}

// Start begins consuming user events. This blocks until the context is
// cancelled.
func (c *UserEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *UserEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *UserEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent events.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from user topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.UserSessionStart:
		return c.handleSessionStarted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled user event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *UserEventConsumer) handleSessionStarted(ctx context.Context, cloudEvent events.CloudEvent) error {
	var evt events.UserSessionStartedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse UserSessionStartedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("warming price cache for new session",
		zap.String("user_id", evt.UserID.String()),
	)
	c.gateway.Prefetch(ctx)
	return nil
}
