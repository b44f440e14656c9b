package store

import (
	"testing"

	"dining-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndListInOrder(t *testing.T) {
	l := NewTransactionLog()

	l.Append(models.Transaction{ID: 1000, StudentID: 1, Amount: decimal.NewFromInt(5)})
	l.Append(models.Transaction{ID: 1001, StudentID: 2, Amount: decimal.NewFromInt(7)})
	l.Append(models.Transaction{ID: 1002, StudentID: 1, Amount: decimal.NewFromInt(3)})

	txs := l.ListFor(1)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(1000), txs[0].ID)
	assert.Equal(t, int64(1002), txs[1].ID)

	assert.Empty(t, l.ListFor(3))
}

func TestListReturnsCopy(t *testing.T) {
	l := NewTransactionLog()
	l.Append(models.Transaction{ID: 1000, StudentID: 1, Amount: decimal.NewFromInt(5)})

	txs := l.ListFor(1)
	txs[0].ID = 9999

	again := l.ListFor(1)
	assert.Equal(t, int64(1000), again[0].ID)
}
