package cgtpool

import "testing"

func testLot(quantity, cost, fees float64) *lot {
	return &lot{
		eventID:   "a1",
		acquired:  MustParseDate("2023-01-01"),
		remaining: Q(quantity),
		cost:      M(cost, "GBP"),
		fees:      M(fees, "GBP"),
	}
}

func TestLotTakePartial(t *testing.T) {
	l := testLot(10, 500, 5)
	taken, cost, fees := l.take(Q(4))
	if !taken.Equal(Q(4)) {
		t.Errorf("taken = %s, want 4", taken)
	}
	if !cost.Equal(M(200, "GBP")) {
		t.Errorf("cost = %s, want 200", cost)
	}
	if !fees.Equal(M(2, "GBP")) {
		t.Errorf("fees = %s, want 2", fees)
	}
	if !l.remaining.Equal(Q(6)) || !l.cost.Equal(M(300, "GBP")) || !l.fees.Equal(M(3, "GBP")) {
		t.Errorf("lot after take = %s units, %s + %s, want 6, 300 + 3", l.remaining, l.cost, l.fees)
	}
}

func TestLotTakeFullTransfersExactCost(t *testing.T) {
	// 100/3 is not exact; a full take must still drain the lot to zero.
	l := testLot(3, 100, 0)
	taken, cost, _ := l.take(Q(3))
	if !taken.Equal(Q(3)) {
		t.Errorf("taken = %s, want 3", taken)
	}
	if !cost.Equal(M(100, "GBP")) {
		t.Errorf("cost = %s, want the full 100", cost)
	}
	if !l.remaining.IsZero() || !l.cost.IsZero() {
		t.Errorf("lot not drained: %s units, %s left", l.remaining, l.cost)
	}
}

func TestLotTakeClampsAtRemaining(t *testing.T) {
	l := testLot(5, 250, 0)
	taken, cost, _ := l.take(Q(8))
	if !taken.Equal(Q(5)) {
		t.Errorf("taken = %s, want 5", taken)
	}
	if !cost.Equal(M(250, "GBP")) {
		t.Errorf("cost = %s, want 250", cost)
	}
	taken, _, _ = l.take(Q(1))
	if !taken.IsZero() {
		t.Errorf("take on an empty lot returned %s units", taken)
	}
}

func TestLotRescaleKeepsCost(t *testing.T) {
	l := testLot(10, 500, 5)
	l.rescale(Q(2))
	if !l.remaining.Equal(Q(20)) {
		t.Errorf("remaining = %s, want 20", l.remaining)
	}
	if !l.cost.Equal(M(500, "GBP")) {
		t.Errorf("cost = %s, want unchanged 500", l.cost)
	}
	if !l.unitCost().Equal(M(25, "GBP")) {
		t.Errorf("unit cost = %s, want 25", l.unitCost())
	}
}

func TestLotsOpenAndTotals(t *testing.T) {
	ls := lots{testLot(10, 500, 0), testLot(0, 0, 0), testLot(5, 100, 0)}
	open := ls.open()
	if len(open) != 2 {
		t.Fatalf("open lots = %d, want 2", len(open))
	}
	if !open.totalQuantity().Equal(Q(15)) {
		t.Errorf("total quantity = %s, want 15", open.totalQuantity())
	}
	if !open.totalCost().Equal(M(600, "GBP")) {
		t.Errorf("total cost = %s, want 600", open.totalCost())
	}
}
