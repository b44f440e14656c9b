package ledger

import (
	"sync"

	"dining-service/internal/apperrors"
)

// CapacityLedger owns the remaining-seat counter for every meal slot. Each
// slot has its own lock so reservations on different slots never contend.
type CapacityLedger struct {
	mu    sync.RWMutex
	slots map[int64]*slotCapacity
}

type slotCapacity struct {
	mu        sync.Mutex
	total     int
	remaining int
}

// NewCapacityLedger creates an empty capacity ledger
func NewCapacityLedger() *CapacityLedger {
	return &CapacityLedger{slots: make(map[int64]*slotCapacity)}
}

// Register creates the counter for a meal slot with the given total capacity.
// Re-registering an existing slot is a no-op.
func (l *CapacityLedger) Register(mealSlotID int64, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.slots[mealSlotID]; ok {
		return
	}
	l.slots[mealSlotID] = &slotCapacity{total: total, remaining: total}
}

func (l *CapacityLedger) slot(mealSlotID int64) (*slotCapacity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	slot, ok := l.slots[mealSlotID]
	if !ok {
		return nil, apperrors.ErrInvalidMealSlot
	}
	return slot, nil
}

// TryReserve atomically takes one seat from the slot. On
// ErrCapacityExhausted the counter is unchanged.
func (l *CapacityLedger) TryReserve(mealSlotID int64) error {
	slot, err := l.slot(mealSlotID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.remaining <= 0 {
		return apperrors.ErrCapacityExhausted
	}
	slot.remaining--
	return nil
}

// Release returns one seat to the slot, capped at the total capacity so a
// double release cannot overflow the counter.
func (l *CapacityLedger) Release(mealSlotID int64) error {
	slot, err := l.slot(mealSlotID)
	if err != nil {
		return err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.remaining < slot.total {
		slot.remaining++
	}
	return nil
}

// Remaining reports the current remaining capacity of a slot
func (l *CapacityLedger) Remaining(mealSlotID int64) (int, error) {
	slot, err := l.slot(mealSlotID)
	if err != nil {
		return 0, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.remaining, nil
}
