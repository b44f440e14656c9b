package ledger

import (
	"sync"

	"dining-service/internal/apperrors"

	"github.com/shopspring/decimal"
)

// AccountLedger owns per-student balances. Check-then-mutate is a single
// critical section per account, so a balance can never go negative under
// concurrent debits.
type AccountLedger struct {
	mu       sync.RWMutex
	accounts map[int64]*account
}

type account struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

// NewAccountLedger creates an empty account ledger
func NewAccountLedger() *AccountLedger {
	return &AccountLedger{accounts: make(map[int64]*account)}
}

// Open creates an account with an initial balance. Re-opening an existing
// account is a no-op.
func (l *AccountLedger) Open(studentID int64, initial decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[studentID]; ok {
		return
	}
	l.accounts[studentID] = &account{balance: initial}
}

func (l *AccountLedger) account(studentID int64) (*account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[studentID]
	if !ok {
		return nil, apperrors.ErrUnknownStudent
	}
	return acc, nil
}

// Debit atomically subtracts amount from the balance. On
// ErrInsufficientFunds the balance is unchanged.
func (l *AccountLedger) Debit(studentID int64, amount decimal.Decimal) error {
	acc, err := l.account(studentID)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	if acc.balance.LessThan(amount) {
		return apperrors.ErrInsufficientFunds
	}
	acc.balance = acc.balance.Sub(amount)
	return nil
}

// Credit atomically adds amount to the balance
func (l *AccountLedger) Credit(studentID int64, amount decimal.Decimal) error {
	acc, err := l.account(studentID)
	if err != nil {
		return err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()

	acc.balance = acc.balance.Add(amount)
	return nil
}

// Balance reports the current balance of a student
func (l *AccountLedger) Balance(studentID int64) (decimal.Decimal, error) {
	acc, err := l.account(studentID)
	if err != nil {
		return decimal.Zero, err
	}

	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.balance, nil
}
