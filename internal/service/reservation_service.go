package service

import (
	"context"
	"fmt"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/broker"
	"dining-service/internal/directory"
	"dining-service/internal/ledger"
	"dining-service/internal/models"
	"dining-service/internal/store"
	"dining-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReservationService exposes the post-commit operations: cancellation,
// listings, balance queries and top-ups
type ReservationService struct {
	reservations *store.ReservationStore
	txlog        *store.TransactionLog
	accounts     *ledger.AccountLedger
	directory    *directory.Directory
	publisher    *broker.EventPublisher
	logger       *zap.Logger
}

// NewReservationService creates a new reservation service. publisher is
// optional.
func NewReservationService(
	reservations *store.ReservationStore,
	txlog *store.TransactionLog,
	accounts *ledger.AccountLedger,
	dir *directory.Directory,
	publisher *broker.EventPublisher,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		txlog:        txlog,
		accounts:     accounts,
		directory:    dir,
		publisher:    publisher,
		logger:       util.GetLogger(),
	}
}

// Cancel flips a confirmed reservation to Cancelled. No refund: neither the
// balance nor the slot's capacity changes, matching the settled product
// behavior. Cancelling twice reports ErrAlreadyCancelled and mutates nothing.
func (s *ReservationService) Cancel(ctx context.Context, studentID, reservationID int64) error {
	ctx, span := util.StartSpan(ctx, "ReservationService.Cancel")
	defer span.End()

	res, err := s.reservations.Get(reservationID)
	if err != nil {
		return err
	}
	if res.StudentID != studentID {
		return apperrors.ErrReservationNotFound
	}

	if err := s.reservations.Cancel(reservationID); err != nil {
		return err
	}

	util.ReservationsCancelledTotal.Inc()
	s.logger.Info("Reservation cancelled",
		zap.Int64("student_id", studentID),
		zap.Int64("reservation_id", reservationID))

	if s.publisher != nil {
		event := &models.ReservationCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeReservationCancelled,
				Timestamp: time.Now(),
			},
			StudentID:     studentID,
			ReservationID: reservationID,
		}
		if err := s.publisher.PublishReservationCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish ReservationCancelled event", zap.Error(err))
		}
	}
	return nil
}

// ListReservations returns the student's reservations in creation order
func (s *ReservationService) ListReservations(studentID int64) ([]models.Reservation, error) {
	if !s.directory.IsActive(studentID) {
		return nil, apperrors.ErrUnknownStudent
	}
	return s.reservations.ListByStudent(studentID), nil
}

// ListTransactions returns the student's transactions oldest first
func (s *ReservationService) ListTransactions(studentID int64) ([]models.Transaction, error) {
	if !s.directory.IsActive(studentID) {
		return nil, apperrors.ErrUnknownStudent
	}
	return s.txlog.ListFor(studentID), nil
}

// Balance reports the student's current balance
func (s *ReservationService) Balance(studentID int64) (decimal.Decimal, error) {
	return s.accounts.Balance(studentID)
}

// Credit tops up the student's balance
func (s *ReservationService) Credit(ctx context.Context, studentID int64, amount decimal.Decimal) error {
	ctx, span := util.StartSpan(ctx, "ReservationService.Credit")
	defer span.End()

	if !amount.IsPositive() {
		return fmt.Errorf("top-up amount must be positive, got %s", amount)
	}
	if err := s.accounts.Credit(studentID, amount); err != nil {
		return err
	}

	util.BalanceCreditsTotal.Inc()
	s.logger.Info("Balance credited",
		zap.Int64("student_id", studentID),
		zap.String("amount", amount.String()))

	if s.publisher != nil {
		event := &models.BalanceCreditedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeBalanceCredited,
				Timestamp: time.Now(),
			},
			StudentID: studentID,
			Amount:    amount,
		}
		if err := s.publisher.PublishBalanceCredited(ctx, event); err != nil {
			s.logger.Error("Failed to publish BalanceCredited event", zap.Error(err))
		}
	}
	return nil
}
