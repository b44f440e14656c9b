package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealSlot represents a purchasable meal offering in the catalog
type MealSlot struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	MealType      string          `json:"meal_type"`
	ReserveDay    string          `json:"reserve_day"`
	Active        bool            `json:"active"`
	TotalCapacity int             `json:"total_capacity"`
	SideItems     []string        `json:"side_items,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DiningHall represents a dining hall location
type DiningHall struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

// Student represents a directory entry for a student
type Student struct {
	ID        int64  `json:"id"`
	StudentNo string `json:"student_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Active    bool   `json:"active"`
}

// Reservation represents a seat reservation for one meal slot
type Reservation struct {
	ID         int64           `json:"id"`
	StudentID  int64           `json:"student_id"`
	MealSlotID int64           `json:"meal_slot_id"`
	HallID     int64           `json:"hall_id"`
	MealType   string          `json:"meal_type"`
	ReserveDay string          `json:"reserve_day"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Transaction represents a completed payment, immutable after creation
type Transaction struct {
	ID           int64           `json:"id"`
	StudentID    int64           `json:"student_id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	TrackingCode string          `json:"tracking_code"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CartItem represents a draft reservation candidate held in a cart
type CartItem struct {
	Ref        int64     `json:"ref"`
	MealSlotID int64     `json:"meal_slot_id"`
	HallID     int64     `json:"hall_id"`
	AddedAt    time.Time `json:"added_at"`
}

// Meal types
const (
	MealTypeBreakfast = "BREAKFAST"
	MealTypeLunch     = "LUNCH"
	MealTypeDinner    = "DINNER"
)

// Reserve days
const (
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
)

// Reservation statuses
const (
	ReservationStatusDraft     = "DRAFT"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"
	ReservationStatusFailed    = "FAILED"
)

// Transaction types
const (
	TransactionTypePayment  = "PAYMENT"
	TransactionTypeTransfer = "TRANSFER"
)

// Transaction statuses
const (
	TransactionStatusPending   = "PENDING"
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusFailed    = "FAILED"
)
