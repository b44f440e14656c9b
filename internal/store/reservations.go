package store

import (
	"sync"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/models"

	"github.com/shopspring/decimal"
)

// slotKey identifies the one-reservation-per-student-day-mealtype constraint
type slotKey struct {
	studentID  int64
	reserveDay string
	mealType   string
}

// ReservationStore owns reservation records and their state transitions.
// The uniqueness index holds the (student, day, mealType) key for Draft and
// Confirmed records; Failed and Cancelled transitions free the key, so a
// rolled-back draft never blocks a retry.
type ReservationStore struct {
	mu        sync.Mutex
	ids       *IDAllocator
	byID      map[int64]*models.Reservation
	byStudent map[int64][]int64
	index     map[slotKey]int64
}

// NewReservationStore creates an empty reservation store
func NewReservationStore(ids *IDAllocator) *ReservationStore {
	return &ReservationStore{
		ids:       ids,
		byID:      make(map[int64]*models.Reservation),
		byStudent: make(map[int64][]int64),
		index:     make(map[slotKey]int64),
	}
}

// RegisterDraft allocates an id and stores a Draft reservation. It fails
// with ErrDuplicateReservation when the student already holds a Draft or
// Confirmed reservation for the same day and meal type.
func (s *ReservationStore) RegisterDraft(studentID, mealSlotID, hallID int64, mealType, reserveDay string, price decimal.Decimal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{studentID: studentID, reserveDay: reserveDay, mealType: mealType}
	if _, held := s.index[key]; held {
		return 0, apperrors.ErrDuplicateReservation
	}

	id := s.ids.Next(KindReservation)
	s.byID[id] = &models.Reservation{
		ID:         id,
		StudentID:  studentID,
		MealSlotID: mealSlotID,
		HallID:     hallID,
		MealType:   mealType,
		ReserveDay: reserveDay,
		Price:      price,
		Status:     models.ReservationStatusDraft,
		CreatedAt:  time.Now(),
	}
	s.byStudent[studentID] = append(s.byStudent[studentID], id)
	s.index[key] = id
	return id, nil
}

// Confirm transitions a reservation from Draft to Confirmed
func (s *ReservationStore) Confirm(id int64) error {
	return s.transition(id, models.ReservationStatusDraft, models.ReservationStatusConfirmed)
}

// Fail transitions a reservation from Draft to Failed and frees its
// uniqueness key (batch rollback path)
func (s *ReservationStore) Fail(id int64) error {
	return s.transition(id, models.ReservationStatusDraft, models.ReservationStatusFailed)
}

func (s *ReservationStore) transition(id int64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[id]
	if !ok {
		return apperrors.ErrReservationNotFound
	}
	if res.Status != from {
		return apperrors.ErrInvalidTransition
	}
	res.Status = to

	if to == models.ReservationStatusFailed {
		s.freeKey(res)
	}
	return nil
}

// Cancel transitions a Confirmed reservation to Cancelled. Cancelling an
// already-cancelled reservation returns ErrAlreadyCancelled and mutates
// nothing, making the operation idempotent for callers that retry.
func (s *ReservationStore) Cancel(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[id]
	if !ok {
		return apperrors.ErrReservationNotFound
	}

	switch res.Status {
	case models.ReservationStatusCancelled:
		return apperrors.ErrAlreadyCancelled
	case models.ReservationStatusConfirmed:
		res.Status = models.ReservationStatusCancelled
		s.freeKey(res)
		return nil
	default:
		return apperrors.ErrInvalidTransition
	}
}

// freeKey releases the uniqueness index entry if this reservation holds it.
// Caller must hold s.mu.
func (s *ReservationStore) freeKey(res *models.Reservation) {
	key := slotKey{studentID: res.StudentID, reserveDay: res.ReserveDay, mealType: res.MealType}
	if holder, ok := s.index[key]; ok && holder == res.ID {
		delete(s.index, key)
	}
}

// Get retrieves a reservation by id
func (s *ReservationStore) Get(id int64) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, ok := s.byID[id]
	if !ok {
		return models.Reservation{}, apperrors.ErrReservationNotFound
	}
	return *res, nil
}

// ListByStudent returns the student's reservations in creation order
func (s *ReservationStore) ListByStudent(studentID int64) []models.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.byStudent[studentID]
	out := make([]models.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	return out
}
