// Package allocator hands out free trading accounts in round-robin
// order. The pool represents a real, globally exhaustible resource, so
// one allocator instance is shared across every lab in a run.
package allocator

import (
	"sync"

	"github.com/iamcos/haaslab/internal/models"
)

// Allocator tracks the unoccupied accounts for one run. It is an
// explicit object passed by reference, never package-level state, so
// concurrent runs and tests get independent rotations. All rotation
// mutations are mutex-guarded.
type Allocator struct {
	mu         sync.Mutex
	free       []models.AccountSlot
	next       int
	allowReuse bool
}

// New builds an allocator from the account scan, keeping only slots
// with no existing bot binding. With allowReuse the rotation wraps
// cyclically once exhausted (mass-creation mode); otherwise Next
// reports exhaustion, which is a stop condition rather than an error.
func New(slots []models.AccountSlot, allowReuse bool) *Allocator {
	free := make([]models.AccountSlot, 0, len(slots))
	for _, s := range slots {
		if !s.Occupied {
			free = append(free, s)
		}
	}
	return &Allocator{
		free:       free,
		allowReuse: allowReuse,
	}
}

// Next returns the next free account in rotation order. The second
// return value is false once the pool is exhausted and reuse is
// disabled. Without reuse, no physical account is ever returned twice
// within the same run.
func (a *Allocator) Next() (models.AccountSlot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.free) == 0 {
		return models.AccountSlot{}, false
	}

	if a.next >= len(a.free) {
		if !a.allowReuse {
			return models.AccountSlot{}, false
		}
		a.next = 0
	}

	slot := a.free[a.next]
	a.next++
	slot.Occupied = true
	return slot, true
}

// FreeCount returns the number of accounts not yet handed out in this
// rotation pass.
func (a *Allocator) FreeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	remaining := len(a.free) - a.next
	if remaining < 0 {
		return 0
	}
	return remaining
}

// PoolSize returns the total number of free accounts found at scan
// time.
func (a *Allocator) PoolSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.free)
}
