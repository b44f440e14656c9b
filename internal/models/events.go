package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeCartConfirmed        = "CART_CONFIRMED"
	EventTypeReservationCancelled = "RESERVATION_CANCELLED"
	EventTypeBalanceCredited      = "BALANCE_CREDITED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// CartConfirmedEvent published when a cart commits successfully
type CartConfirmedEvent struct {
	BaseEvent
	StudentID      int64           `json:"student_id"`
	TransactionID  int64           `json:"transaction_id"`
	TrackingCode   string          `json:"tracking_code"`
	Amount         decimal.Decimal `json:"amount"`
	ReservationIDs []int64         `json:"reservation_ids"`
}

// ReservationCancelledEvent published when a confirmed reservation is cancelled
type ReservationCancelledEvent struct {
	BaseEvent
	StudentID     int64 `json:"student_id"`
	ReservationID int64 `json:"reservation_id"`
}

// BalanceCreditedEvent published when a student tops up their balance
type BalanceCreditedEvent struct {
	BaseEvent
	StudentID int64           `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
}
