package allocator

import (
	"testing"

	"github.com/iamcos/haaslab/internal/models"
)

func slots(ids ...string) []models.AccountSlot {
	out := make([]models.AccountSlot, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.AccountSlot{AccountID: id, Exchange: "BINANCE"})
	}
	return out
}

func TestNextNeverReturnsSameAccountTwice(t *testing.T) {
	alloc := New(slots("acc1", "acc2", "acc3"), false)

	seen := make(map[string]bool)
	for {
		slot, ok := alloc.Next()
		if !ok {
			break
		}
		if seen[slot.AccountID] {
			t.Fatalf("account %s handed out twice", slot.AccountID)
		}
		seen[slot.AccountID] = true
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct accounts, got %d", len(seen))
	}
}

func TestNextReportsExhaustion(t *testing.T) {
	alloc := New(slots("acc1"), false)

	if _, ok := alloc.Next(); !ok {
		t.Fatal("expected first allocation to succeed")
	}
	if _, ok := alloc.Next(); ok {
		t.Fatal("expected exhausted pool to report false")
	}
	// Exhaustion is sticky.
	if _, ok := alloc.Next(); ok {
		t.Fatal("expected exhausted pool to keep reporting false")
	}
}

func TestNextWrapsWithReuse(t *testing.T) {
	alloc := New(slots("acc1", "acc2"), true)

	got := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		slot, ok := alloc.Next()
		if !ok {
			t.Fatalf("allocation %d failed with reuse enabled", i)
		}
		got = append(got, slot.AccountID)
	}

	want := []string{"acc1", "acc2", "acc1", "acc2", "acc1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected rotation %v, got %v", want, got)
		}
	}
}

func TestNewFiltersOccupiedSlots(t *testing.T) {
	input := []models.AccountSlot{
		{AccountID: "acc1"},
		{AccountID: "acc2", Occupied: true},
		{AccountID: "acc3"},
	}
	alloc := New(input, false)

	if alloc.PoolSize() != 2 {
		t.Fatalf("expected pool of 2 free accounts, got %d", alloc.PoolSize())
	}
	slot, ok := alloc.Next()
	if !ok || slot.AccountID != "acc1" {
		t.Fatalf("expected acc1 first, got %v ok=%v", slot.AccountID, ok)
	}
	slot, ok = alloc.Next()
	if !ok || slot.AccountID != "acc3" {
		t.Fatalf("expected acc3 second, got %v ok=%v", slot.AccountID, ok)
	}
}

func TestFreeCount(t *testing.T) {
	alloc := New(slots("acc1", "acc2"), false)

	if alloc.FreeCount() != 2 {
		t.Fatalf("expected 2 free, got %d", alloc.FreeCount())
	}
	alloc.Next()
	if alloc.FreeCount() != 1 {
		t.Fatalf("expected 1 free after allocation, got %d", alloc.FreeCount())
	}
	alloc.Next()
	if alloc.FreeCount() != 0 {
		t.Fatalf("expected 0 free after exhaustion, got %d", alloc.FreeCount())
	}
}

func TestEmptyPool(t *testing.T) {
	alloc := New(nil, true)
	if _, ok := alloc.Next(); ok {
		t.Fatal("expected empty pool to report false even with reuse")
	}
}
