package apperrors

import "errors"

// ErrInvalidMealSlot indicates the referenced meal slot does not exist or is inactive.
var ErrInvalidMealSlot = errors.New("invalid or inactive meal slot")

// ErrInvalidDiningHall indicates the referenced dining hall does not exist.
var ErrInvalidDiningHall = errors.New("invalid dining hall")

// ErrDuplicateReservation indicates the student already holds a reservation
// for the same day and meal type.
var ErrDuplicateReservation = errors.New("duplicate reservation for day and meal type")

// ErrCapacityExhausted indicates the meal slot has no remaining seats.
var ErrCapacityExhausted = errors.New("meal slot capacity exhausted")

// ErrInsufficientFunds indicates the student's balance cannot cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrUnknownStudent indicates no account exists for the student.
var ErrUnknownStudent = errors.New("unknown student")

// ErrReservationNotFound indicates no reservation exists with the given id.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyCancelled indicates the reservation was cancelled before.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrInvalidTransition indicates a reservation state change that the state
// machine does not allow.
var ErrInvalidTransition = errors.New("invalid reservation state transition")

// ErrEmptyCart indicates a confirm attempt on a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// ErrCartItemNotFound indicates the cart holds no item with the given ref.
var ErrCartItemNotFound = errors.New("cart item not found")
