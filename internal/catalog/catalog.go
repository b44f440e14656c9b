package catalog

import (
	"sync"
	"time"

	"dining-service/internal/apperrors"
	"dining-service/internal/models"

	"github.com/shopspring/decimal"
)

// Catalog owns the meal slot and dining hall collections. Entities are
// referenced by id and handed out by value; callers never hold pointers into
// the catalog's storage.
type Catalog struct {
	mu          sync.RWMutex
	mealSlots   map[int64]*models.MealSlot
	diningHalls map[int64]*models.DiningHall
	slotOrder   []int64
	hallOrder   []int64
	nextSlotID  int64
	nextHallID  int64
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		mealSlots:   make(map[int64]*models.MealSlot),
		diningHalls: make(map[int64]*models.DiningHall),
		nextSlotID:  1,
		nextHallID:  1,
	}
}

// AddMealSlot registers a new meal slot and returns its assigned id
func (c *Catalog) AddMealSlot(slot models.MealSlot) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot.ID = c.nextSlotID
	c.nextSlotID++
	slot.CreatedAt = time.Now()

	stored := slot
	c.mealSlots[stored.ID] = &stored
	c.slotOrder = append(c.slotOrder, stored.ID)
	return stored.ID
}

// AddDiningHall registers a new dining hall and returns its assigned id
func (c *Catalog) AddDiningHall(hall models.DiningHall) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	hall.ID = c.nextHallID
	c.nextHallID++

	stored := hall
	c.diningHalls[stored.ID] = &stored
	c.hallOrder = append(c.hallOrder, stored.ID)
	return stored.ID
}

// GetMealSlot retrieves a meal slot by id, active or not
func (c *Catalog) GetMealSlot(id int64) (models.MealSlot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slot, ok := c.mealSlots[id]
	if !ok {
		return models.MealSlot{}, apperrors.ErrInvalidMealSlot
	}
	return *slot, nil
}

// GetDiningHall retrieves a dining hall by id
func (c *Catalog) GetDiningHall(id int64) (models.DiningHall, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hall, ok := c.diningHalls[id]
	if !ok {
		return models.DiningHall{}, apperrors.ErrInvalidDiningHall
	}
	return *hall, nil
}

// ListMealSlots returns all meal slots in insertion order
func (c *Catalog) ListMealSlots() []models.MealSlot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slots := make([]models.MealSlot, 0, len(c.slotOrder))
	for _, id := range c.slotOrder {
		slots = append(slots, *c.mealSlots[id])
	}
	return slots
}

// ListDiningHalls returns all dining halls in insertion order
func (c *Catalog) ListDiningHalls() []models.DiningHall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	halls := make([]models.DiningHall, 0, len(c.hallOrder))
	for _, id := range c.hallOrder {
		halls = append(halls, *c.diningHalls[id])
	}
	return halls
}

// SetMealSlotActive activates or deactivates a meal slot
func (c *Catalog) SetMealSlotActive(id int64, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.mealSlots[id]
	if !ok {
		return apperrors.ErrInvalidMealSlot
	}
	slot.Active = active
	return nil
}

// UpdateMealSlotPrice changes the price of a meal slot
func (c *Catalog) UpdateMealSlotPrice(id int64, price decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.mealSlots[id]
	if !ok {
		return apperrors.ErrInvalidMealSlot
	}
	slot.Price = price
	return nil
}

// AddSideItem appends a side item to a meal slot
func (c *Catalog) AddSideItem(id int64, item string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.mealSlots[id]
	if !ok {
		return apperrors.ErrInvalidMealSlot
	}
	slot.SideItems = append(slot.SideItems, item)
	return nil
}
