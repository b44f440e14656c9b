package store

import (
	"fmt"
	"math"
	"sync"
)

// ID kinds
const (
	KindReservation = "reservation"
	KindTransaction = "transaction"
)

// IDAllocator issues unique, strictly increasing ids per entity kind.
// Exhausting the id space is a programming-level fault, not a business
// error, and panics.
type IDAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewIDAllocator creates an allocator with the given per-kind seeds. The
// seed is the first id handed out for that kind.
func NewIDAllocator(seeds map[string]int64) *IDAllocator {
	counters := make(map[string]int64, len(seeds))
	for kind, seed := range seeds {
		counters[kind] = seed
	}
	return &IDAllocator{counters: counters}
}

// Next returns the next id for the kind
func (a *IDAllocator) Next(kind string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id, ok := a.counters[kind]
	if !ok {
		panic(fmt.Sprintf("id allocator: unknown kind %q", kind))
	}
	if id == math.MaxInt64 {
		panic(fmt.Sprintf("id allocator: kind %q exhausted", kind))
	}
	a.counters[kind] = id + 1
	return id
}
