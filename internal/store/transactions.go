package store

import (
	"sync"

	"dining-service/internal/models"
)

// TransactionLog is the append-only record of completed payments. Entries
// are never mutated after Append.
type TransactionLog struct {
	mu        sync.Mutex
	byStudent map[int64][]models.Transaction
}

// NewTransactionLog creates an empty transaction log
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{byStudent: make(map[int64][]models.Transaction)}
}

// Append records a transaction under its student
func (l *TransactionLog) Append(tx models.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byStudent[tx.StudentID] = append(l.byStudent[tx.StudentID], tx)
}

// ListFor returns the student's transactions oldest first
func (l *TransactionLog) ListFor(studentID int64) []models.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	src := l.byStudent[studentID]
	out := make([]models.Transaction, len(src))
	copy(out, src)
	return out
}
