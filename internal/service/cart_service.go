package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/catalog"
	"dining-service/internal/directory"
	"dining-service/internal/models"
	"dining-service/internal/redisclient"
	"dining-service/internal/util"

	"go.uber.org/zap"
)

const confirmResultTTL = 24 * time.Hour

// CartService owns the per-student draft carts and drives the commit
// pipeline on confirm
type CartService struct {
	mu      sync.Mutex
	carts   map[int64][]models.CartItem
	nextRef int64

	catalog   *catalog.Catalog
	directory *directory.Directory
	pipeline  *CommitPipeline
	redis     *redisclient.Client
	logger    *zap.Logger
}

// NewCartService creates a new cart service. redis is optional; without it
// confirm idempotency caching is disabled.
func NewCartService(
	cat *catalog.Catalog,
	dir *directory.Directory,
	pipeline *CommitPipeline,
	redis *redisclient.Client,
) *CartService {
	return &CartService{
		carts:     make(map[int64][]models.CartItem),
		nextRef:   1,
		catalog:   cat,
		directory: dir,
		pipeline:  pipeline,
		redis:     redis,
		logger:    util.GetLogger(),
	}
}

// AddItem validates the slot and hall and appends a draft item to the
// student's cart
func (s *CartService) AddItem(ctx context.Context, studentID, mealSlotID, hallID int64) (models.CartItem, error) {
	_, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if !s.directory.IsActive(studentID) {
		return models.CartItem{}, apperrors.ErrUnknownStudent
	}

	slot, err := s.catalog.GetMealSlot(mealSlotID)
	if err != nil {
		return models.CartItem{}, err
	}
	if !slot.Active {
		return models.CartItem{}, apperrors.ErrInvalidMealSlot
	}
	if _, err := s.catalog.GetDiningHall(hallID); err != nil {
		return models.CartItem{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.CartItem{
		Ref:        s.nextRef,
		MealSlotID: mealSlotID,
		HallID:     hallID,
		AddedAt:    time.Now(),
	}
	s.nextRef++
	s.carts[studentID] = append(s.carts[studentID], item)

	util.CartItemsAddedTotal.Inc()
	s.logger.Info("Item added to cart",
		zap.Int64("student_id", studentID),
		zap.Int64("meal_slot_id", mealSlotID),
		zap.Int64("ref", item.Ref))
	return item, nil
}

// RemoveItem removes the item with the given ref from the student's cart
func (s *CartService) RemoveItem(studentID, ref int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[studentID]
	for i, item := range items {
		if item.Ref == ref {
			s.carts[studentID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrCartItemNotFound
}

// ViewCart returns the student's cart items in insertion order
func (s *CartService) ViewCart(studentID int64) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[studentID]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}

// Confirm commits the student's cart through the pipeline. On success the
// cart is cleared and, when an idempotency key is supplied, the result is
// cached so a retried request returns the original outcome instead of
// double-charging.
func (s *CartService) Confirm(ctx context.Context, studentID int64, idempotencyKey string) (*CommitResult, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Confirm")
	defer span.End()

	if !s.directory.IsActive(studentID) {
		return nil, apperrors.ErrUnknownStudent
	}

	if cached := s.cachedResult(ctx, studentID, idempotencyKey); cached != nil {
		s.logger.Info("Duplicate confirm request detected",
			zap.Int64("student_id", studentID),
			zap.String("idempotency_key", idempotencyKey))
		return cached, nil
	}

	s.mu.Lock()
	items := make([]models.CartItem, len(s.carts[studentID]))
	copy(items, s.carts[studentID])
	s.mu.Unlock()

	result, err := s.pipeline.Commit(ctx, studentID, items)
	if err != nil {
		util.CartsFailedTotal.WithLabelValues(failureReason(err)).Inc()
		return nil, err
	}

	s.clearCommitted(studentID, items)

	util.CartsConfirmedTotal.Inc()
	s.cacheResult(ctx, studentID, idempotencyKey, result)
	return result, nil
}

// clearCommitted drops the committed items from the cart. Items the student
// added while the pipeline was running were not part of the committed
// snapshot and must stay in the cart.
func (s *CartService) clearCommitted(studentID int64, committed []models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make(map[int64]bool, len(committed))
	for _, item := range committed {
		refs[item.Ref] = true
	}

	var kept []models.CartItem
	for _, item := range s.carts[studentID] {
		if !refs[item.Ref] {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		delete(s.carts, studentID)
		return
	}
	s.carts[studentID] = kept
}

func (s *CartService) cachedResult(ctx context.Context, studentID int64, key string) *CommitResult {
	if s.redis == nil || key == "" {
		return nil
	}
	payload, err := s.redis.GetConfirmResult(ctx, studentID, key)
	if err != nil {
		s.logger.Warn("Failed to read confirm cache", zap.Error(err))
		return nil
	}
	if payload == nil {
		return nil
	}
	var result CommitResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("Failed to decode cached confirm result", zap.Error(err))
		return nil
	}
	return &result
}

func (s *CartService) cacheResult(ctx context.Context, studentID int64, key string, result *CommitResult) {
	if s.redis == nil || key == "" {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.redis.SetConfirmResult(ctx, studentID, key, payload, confirmResultTTL); err != nil {
		s.logger.Warn("Failed to cache confirm result", zap.Error(err))
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperrors.ErrInvalidMealSlot):
		return "invalid_meal_slot"
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperrors.ErrDuplicateReservation):
		return "duplicate_reservation"
	case errors.Is(err, apperrors.ErrCapacityExhausted):
		return "capacity_exhausted"
	case errors.Is(err, apperrors.ErrUnknownStudent):
		return "unknown_student"
	default:
		return "internal"
	}
}
