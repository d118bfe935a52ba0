package cgtpool

import (
	"errors"
	"testing"
)

func TestAdjustForSplitRescalesPriorLotsAndPool(t *testing.T) {
	before := testLot(10, 500, 0)
	sameDay := testLot(4, 100, 0)
	sameDay.acquired = MustParseDate("2023-02-01")
	after := testLot(6, 120, 0)
	after.acquired = MustParseDate("2023-03-01")

	pool := Section104Pool{Quantity: Q(20), Cost: M(1000, "GBP")}
	ev := split("s1", "2023-02-01", 1, 2)

	if err := adjustForSplit(&pool, lots{before, sameDay, after}, ev); err != nil {
		t.Fatalf("adjustForSplit() error = %v", err)
	}
	if !before.remaining.Equal(Q(20)) {
		t.Errorf("prior lot = %s units, want rescaled 20", before.remaining)
	}
	if !sameDay.remaining.Equal(Q(4)) {
		t.Errorf("same-day lot = %s units, want untouched 4", sameDay.remaining)
	}
	if !after.remaining.Equal(Q(6)) {
		t.Errorf("later lot = %s units, want untouched 6", after.remaining)
	}
	if !pool.Quantity.Equal(Q(40)) || !pool.Cost.Equal(M(1000, "GBP")) {
		t.Errorf("pool = %s units at %s, want 40 at 1000", pool.Quantity, pool.Cost)
	}
}

func TestAdjustForSplitWithNothingToRescale(t *testing.T) {
	var pool Section104Pool
	after := testLot(6, 120, 0)
	after.acquired = MustParseDate("2023-03-01")

	err := adjustForSplit(&pool, lots{after}, split("s1", "2023-02-01", 1, 2))
	var ordering *SplitOrderingError
	if !errors.As(err, &ordering) {
		t.Fatalf("error = %v, want SplitOrderingError", err)
	}
}
