package worker

import (
	"context"

	"dining-service/internal/broker"
	"dining-service/internal/models"
	"dining-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes reservation events and fans them out to
// students (currently log-only; the campus messaging gateway hook goes here)
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCartConfirmed(w.handleCartConfirmed)
	eventHandler.OnReservationCancelled(w.handleReservationCancelled)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleCartConfirmed(ctx context.Context, event *models.CartConfirmedEvent) error {
	w.logger.Info("Notifying student of confirmed reservations",
		zap.Int64("student_id", event.StudentID),
		zap.String("tracking_code", event.TrackingCode),
		zap.Int("reservations", len(event.ReservationIDs)))
	util.NotificationsSentTotal.WithLabelValues(event.EventType).Inc()
	return nil
}

func (w *NotificationWorker) handleReservationCancelled(ctx context.Context, event *models.ReservationCancelledEvent) error {
	w.logger.Info("Notifying student of cancellation",
		zap.Int64("student_id", event.StudentID),
		zap.Int64("reservation_id", event.ReservationID))
	util.NotificationsSentTotal.WithLabelValues(event.EventType).Inc()
	return nil
}
