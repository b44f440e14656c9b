package service

import (
	"context"
	"fmt"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/broker"
	"dining-service/internal/catalog"
	"dining-service/internal/ledger"
	"dining-service/internal/models"
	"dining-service/internal/redisclient"
	"dining-service/internal/store"
	"dining-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CommitPipeline turns a batch of cart items into confirmed reservations
// plus one payment transaction, all-or-nothing. It never holds more than one
// ledger lock at a time; instead of a global transaction it compensates
// explicitly, releasing every seat it took in the attempt before reporting
// failure.
type CommitPipeline struct {
	catalog      *catalog.Catalog
	capacity     *ledger.CapacityLedger
	accounts     *ledger.AccountLedger
	reservations *store.ReservationStore
	txlog        *store.TransactionLog
	ids          *store.IDAllocator
	publisher    *broker.EventPublisher
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewCommitPipeline creates a new commit pipeline. publisher and redis are
// optional; a nil value disables event publishing or capacity mirroring.
func NewCommitPipeline(
	cat *catalog.Catalog,
	capacity *ledger.CapacityLedger,
	accounts *ledger.AccountLedger,
	reservations *store.ReservationStore,
	txlog *store.TransactionLog,
	ids *store.IDAllocator,
	publisher *broker.EventPublisher,
	redis *redisclient.Client,
) *CommitPipeline {
	return &CommitPipeline{
		catalog:      cat,
		capacity:     capacity,
		accounts:     accounts,
		reservations: reservations,
		txlog:        txlog,
		ids:          ids,
		publisher:    publisher,
		redis:        redis,
		logger:       util.GetLogger(),
	}
}

// CommitResult describes a successful cart commit
type CommitResult struct {
	TransactionID  int64           `json:"transaction_id"`
	TrackingCode   string          `json:"tracking_code"`
	Total          decimal.Decimal `json:"total"`
	ReservationIDs []int64         `json:"reservation_ids"`
}

// reservedItem tracks one fully reserved item (draft registered and seat
// taken) so the rollback knows exactly what to undo
type reservedItem struct {
	reservationID int64
	mealSlotID    int64
}

// Commit runs the batch against the ledgers. Items are processed in order;
// the first failure rolls back everything this attempt reserved and is
// returned naming the offending item.
func (p *CommitPipeline) Commit(ctx context.Context, studentID int64, items []models.CartItem) (*CommitResult, error) {
	ctx, span := util.StartSpan(ctx, "CommitPipeline.Commit")
	defer span.End()

	if len(items) == 0 {
		return nil, apperrors.ErrEmptyCart
	}

	// Phase 1: resolve every slot before touching any ledger.
	slots := make([]models.MealSlot, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		slot, err := p.catalog.GetMealSlot(item.MealSlotID)
		if err != nil {
			return nil, fmt.Errorf("cart item %d: %w", item.Ref, err)
		}
		if !slot.Active {
			return nil, fmt.Errorf("cart item %d: %w", item.Ref, apperrors.ErrInvalidMealSlot)
		}
		slots = append(slots, slot)
		total = total.Add(slot.Price)
	}

	// Phase 2: balance pre-check, before reserving any capacity, so a broke
	// account doesn't churn seats on popular slots.
	balance, err := p.accounts.Balance(studentID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(total) {
		return nil, apperrors.ErrInsufficientFunds
	}

	// Phase 3: register drafts and take seats item by item.
	start := time.Now()
	reserved := make([]reservedItem, 0, len(items))
	for i, item := range items {
		slot := slots[i]

		resID, err := p.reservations.RegisterDraft(studentID, slot.ID, item.HallID, slot.MealType, slot.ReserveDay, slot.Price)
		if err != nil {
			p.rollback(reserved)
			util.CapacityReservationsFailed.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("cart item %d: %w", item.Ref, err)
		}

		if err := p.capacity.TryReserve(slot.ID); err != nil {
			if ferr := p.reservations.Fail(resID); ferr != nil {
				p.logger.Error("Failed to mark draft failed",
					zap.Int64("reservation_id", resID),
					zap.Error(ferr))
			}
			p.rollback(reserved)
			util.CapacityReservationsFailed.WithLabelValues("exhausted").Inc()
			return nil, fmt.Errorf("cart item %d: %w", item.Ref, err)
		}

		reserved = append(reserved, reservedItem{reservationID: resID, mealSlotID: slot.ID})
	}
	util.CapacityReserveLatency.Observe(time.Since(start).Seconds())

	// Phase 4: one debit for the whole batch. The pre-check makes failure
	// unlikely, but a concurrent commit on the same account can still win the
	// race to the balance; that is a rollback trigger like any other.
	if err := p.accounts.Debit(studentID, total); err != nil {
		p.rollback(reserved)
		return nil, err
	}

	// Phase 5: promote drafts, record the payment.
	reservationIDs := make([]int64, 0, len(reserved))
	for _, r := range reserved {
		if err := p.reservations.Confirm(r.reservationID); err != nil {
			p.logger.Error("Failed to confirm reserved draft",
				zap.Int64("reservation_id", r.reservationID),
				zap.Error(err))
			continue
		}
		reservationIDs = append(reservationIDs, r.reservationID)
		util.ReservationsConfirmedTotal.Inc()
	}

	tx := models.Transaction{
		ID:           p.ids.Next(store.KindTransaction),
		StudentID:    studentID,
		Amount:       total,
		Type:         models.TransactionTypePayment,
		Status:       models.TransactionStatusCompleted,
		TrackingCode: fmt.Sprintf("TRK-%s", uuid.New().String()[:8]),
		CreatedAt:    time.Now(),
	}
	p.txlog.Append(tx)
	util.PaymentsCompletedTotal.Inc()

	p.logger.Info("Cart committed",
		zap.Int64("student_id", studentID),
		zap.Int64("transaction_id", tx.ID),
		zap.String("total", total.String()),
		zap.Int("reservations", len(reservationIDs)))

	p.mirrorCapacity(ctx, reserved)
	p.publishConfirmed(ctx, studentID, tx, reservationIDs)

	return &CommitResult{
		TransactionID:  tx.ID,
		TrackingCode:   tx.TrackingCode,
		Total:          total,
		ReservationIDs: reservationIDs,
	}, nil
}

// rollback releases every seat taken in this attempt and marks the drafts
// Failed. Errors here are logged, not returned; the original failure is what
// the caller needs to see.
func (p *CommitPipeline) rollback(reserved []reservedItem) {
	for _, r := range reserved {
		if err := p.capacity.Release(r.mealSlotID); err != nil {
			p.logger.Error("Failed to release seat during rollback",
				zap.Int64("meal_slot_id", r.mealSlotID),
				zap.Error(err))
		}
		if err := p.reservations.Fail(r.reservationID); err != nil {
			p.logger.Error("Failed to mark draft failed during rollback",
				zap.Int64("reservation_id", r.reservationID),
				zap.Error(err))
		}
	}
}

// mirrorCapacity pushes the committed slots' remaining seats to Redis for
// read-side consumers, best effort
func (p *CommitPipeline) mirrorCapacity(ctx context.Context, reserved []reservedItem) {
	if p.redis == nil {
		return
	}
	for _, r := range reserved {
		remaining, err := p.capacity.Remaining(r.mealSlotID)
		if err != nil {
			continue
		}
		slot, err := p.catalog.GetMealSlot(r.mealSlotID)
		if err != nil {
			continue
		}
		if err := p.redis.SyncCapacity(ctx, r.mealSlotID, remaining, slot.TotalCapacity); err != nil {
			p.logger.Warn("Failed to mirror capacity to Redis",
				zap.Int64("meal_slot_id", r.mealSlotID),
				zap.Error(err))
		}
	}
}

func (p *CommitPipeline) publishConfirmed(ctx context.Context, studentID int64, tx models.Transaction, reservationIDs []int64) {
	if p.publisher == nil {
		return
	}
	event := &models.CartConfirmedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeCartConfirmed,
			Timestamp: time.Now(),
		},
		StudentID:      studentID,
		TransactionID:  tx.ID,
		TrackingCode:   tx.TrackingCode,
		Amount:         tx.Amount,
		ReservationIDs: reservationIDs,
	}
	if err := p.publisher.PublishCartConfirmed(ctx, event); err != nil {
		p.logger.Error("Failed to publish CartConfirmed event", zap.Error(err))
	}
}
