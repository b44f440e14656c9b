package ledger

import (
	"sync"
	"testing"

	"dining-service/internal/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitAndCredit(t *testing.T) {
	l := NewAccountLedger()
	l.Open(1, decimal.NewFromFloat(10.00))

	require.NoError(t, l.Debit(1, decimal.NewFromFloat(4.50)))

	balance, err := l.Balance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(5.50)), "got %s", balance)

	require.NoError(t, l.Credit(1, decimal.NewFromFloat(2.00)))

	balance, err = l.Balance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(7.50)), "got %s", balance)
}

func TestDebitInsufficientFundsLeavesBalance(t *testing.T) {
	l := NewAccountLedger()
	l.Open(1, decimal.NewFromFloat(10.00))

	err := l.Debit(1, decimal.NewFromFloat(12.50))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	balance, err := l.Balance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(10.00)), "got %s", balance)
}

func TestUnknownStudent(t *testing.T) {
	l := NewAccountLedger()

	assert.ErrorIs(t, l.Debit(42, decimal.NewFromInt(1)), apperrors.ErrUnknownStudent)
	assert.ErrorIs(t, l.Credit(42, decimal.NewFromInt(1)), apperrors.ErrUnknownStudent)

	_, err := l.Balance(42)
	assert.ErrorIs(t, err, apperrors.ErrUnknownStudent)
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	const workers = 200
	const opening = 100

	l := NewAccountLedger()
	l.Open(1, decimal.NewFromInt(opening))

	one := decimal.NewFromInt(1)

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Debit(1, one)
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
		}
	}

	assert.Equal(t, opening, wins)

	balance, err := l.Balance(1)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "got %s", balance)
}
