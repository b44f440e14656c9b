package service

import (
	"context"
	"testing"

	"dining-service/internal/apperrors"
	"dining-service/internal/directory"
	"dining-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	*pipelineFixture
	directory *directory.Directory
	carts     *CartService
	hallID    int64
}

func newCartFixture() *cartFixture {
	pf := newPipelineFixture()
	dir := directory.NewDirectory()
	dir.Register(models.Student{ID: 1, StudentNo: "40211001", FirstName: "Sara", LastName: "Moradi", Active: true})
	dir.Register(models.Student{ID: 2, StudentNo: "40211002", FirstName: "Omid", LastName: "Karimi", Active: false})

	hallID := pf.catalog.AddDiningHall(models.DiningHall{Name: "Central Hall", Address: "1 Campus Way", Capacity: 400})

	return &cartFixture{
		pipelineFixture: pf,
		directory:       dir,
		carts:           NewCartService(pf.catalog, dir, pf.pipeline, nil),
		hallID:          hallID,
	}
}

func TestAddRemoveViewCart(t *testing.T) {
	f := newCartFixture()
	slot := f.addSlot("Lunch", 4.50, models.MealTypeLunch, models.DaySaturday, 10)

	first, err := f.carts.AddItem(context.Background(), 1, slot, f.hallID)
	require.NoError(t, err)
	second, err := f.carts.AddItem(context.Background(), 1, slot, f.hallID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Ref, second.Ref)

	items := f.carts.ViewCart(1)
	require.Len(t, items, 2)
	assert.Equal(t, first.Ref, items[0].Ref)

	require.NoError(t, f.carts.RemoveItem(1, first.Ref))
	items = f.carts.ViewCart(1)
	require.Len(t, items, 1)
	assert.Equal(t, second.Ref, items[0].Ref)

	assert.ErrorIs(t, f.carts.RemoveItem(1, first.Ref), apperrors.ErrCartItemNotFound)
}

func TestAddItemValidation(t *testing.T) {
	f := newCartFixture()
	slot := f.addSlot("Lunch", 4.50, models.MealTypeLunch, models.DaySaturday, 10)
	inactive := f.addSlot("Old Menu", 4.00, models.MealTypeDinner, models.DaySaturday, 10)
	require.NoError(t, f.catalog.SetMealSlotActive(inactive, false))

	_, err := f.carts.AddItem(context.Background(), 1, 99, f.hallID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMealSlot)

	_, err = f.carts.AddItem(context.Background(), 1, inactive, f.hallID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidMealSlot)

	_, err = f.carts.AddItem(context.Background(), 1, slot, 99)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDiningHall)

	// Inactive student (id 2) and unknown student both rejected.
	_, err = f.carts.AddItem(context.Background(), 2, slot, f.hallID)
	assert.ErrorIs(t, err, apperrors.ErrUnknownStudent)
	_, err = f.carts.AddItem(context.Background(), 42, slot, f.hallID)
	assert.ErrorIs(t, err, apperrors.ErrUnknownStudent)
}

func TestConfirmClearsCart(t *testing.T) {
	f := newCartFixture()
	slot := f.addSlot("Lunch", 4.50, models.MealTypeLunch, models.DaySaturday, 10)
	f.accounts.Open(1, decimal.NewFromInt(10))

	_, err := f.carts.AddItem(context.Background(), 1, slot, f.hallID)
	require.NoError(t, err)

	result, err := f.carts.Confirm(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, result.ReservationIDs, 1)

	assert.Empty(t, f.carts.ViewCart(1))
	assert.True(t, f.balance(t, 1).Equal(decimal.NewFromFloat(5.50)))
}

func TestConfirmKeepsItemsAddedDuringCommit(t *testing.T) {
	f := newCartFixture()
	slotA := f.addSlot("Lunch", 4.50, models.MealTypeLunch, models.DaySaturday, 10)
	slotB := f.addSlot("Dinner", 3.00, models.MealTypeDinner, models.DaySaturday, 10)

	committed, err := f.carts.AddItem(context.Background(), 1, slotA, f.hallID)
	require.NoError(t, err)

	// The pipeline commits a snapshot of the cart; an item added while it
	// runs is not part of that snapshot and must survive the clear.
	late, err := f.carts.AddItem(context.Background(), 1, slotB, f.hallID)
	require.NoError(t, err)

	f.carts.clearCommitted(1, []models.CartItem{committed})

	items := f.carts.ViewCart(1)
	require.Len(t, items, 1)
	assert.Equal(t, late.Ref, items[0].Ref)

	f.carts.clearCommitted(1, []models.CartItem{late})
	assert.Empty(t, f.carts.ViewCart(1))
}

func TestConfirmFailureKeepsCart(t *testing.T) {
	f := newCartFixture()
	slot := f.addSlot("Lunch", 12.50, models.MealTypeLunch, models.DaySaturday, 10)
	f.accounts.Open(1, decimal.NewFromFloat(10.00))

	_, err := f.carts.AddItem(context.Background(), 1, slot, f.hallID)
	require.NoError(t, err)

	_, err = f.carts.Confirm(context.Background(), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	// The cart survives a failed commit so the student can fix it.
	assert.Len(t, f.carts.ViewCart(1), 1)
	assert.True(t, f.balance(t, 1).Equal(decimal.NewFromFloat(10.00)))
}

func TestConfirmEmptyCart(t *testing.T) {
	f := newCartFixture()
	f.accounts.Open(1, decimal.NewFromInt(10))

	_, err := f.carts.Confirm(context.Background(), 1, "")
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
}

func TestConfirmInactiveStudent(t *testing.T) {
	f := newCartFixture()

	_, err := f.carts.Confirm(context.Background(), 2, "")
	assert.ErrorIs(t, err, apperrors.ErrUnknownStudent)
}
