package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"dining-service/internal/models"
	"dining-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCartConfirmed publishes a CartConfirmed event
func (ep *EventPublisher) PublishCartConfirmed(ctx context.Context, event *models.CartConfirmedEvent) error {
	key := fmt.Sprintf("student-%d", event.StudentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReservationCancelled publishes a ReservationCancelled event
func (ep *EventPublisher) PublishReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	key := fmt.Sprintf("student-%d", event.StudentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishBalanceCredited publishes a BalanceCredited event
func (ep *EventPublisher) PublishBalanceCredited(ctx context.Context, event *models.BalanceCreditedEvent) error {
	key := fmt.Sprintf("student-%d", event.StudentID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onCartConfirmed        func(context.Context, *models.CartConfirmedEvent) error
	onReservationCancelled func(context.Context, *models.ReservationCancelledEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnCartConfirmed registers a handler for CartConfirmed events
func (eh *EventHandler) OnCartConfirmed(handler func(context.Context, *models.CartConfirmedEvent) error) {
	eh.onCartConfirmed = handler
}

// OnReservationCancelled registers a handler for ReservationCancelled events
func (eh *EventHandler) OnReservationCancelled(handler func(context.Context, *models.ReservationCancelledEvent) error) {
	eh.onReservationCancelled = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeCartConfirmed:
		if eh.onCartConfirmed != nil {
			var event models.CartConfirmedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartConfirmed event: %w", err)
			}
			return eh.onCartConfirmed(ctx, &event)
		}

	case models.EventTypeReservationCancelled:
		if eh.onReservationCancelled != nil {
			var event models.ReservationCancelledEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ReservationCancelled event: %w", err)
			}
			return eh.onReservationCancelled(ctx, &event)
		}

	default:
		util.GetLogger().Warn("Unhandled reservation event type",
			zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
