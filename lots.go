package cgtpool

// lot is a discrete quantity of an asset acquired at a specific cost. It is
// created by an acquisition event and shrunk by matches until its remaining
// quantity reaches zero. Cost and fees are held as remaining totals so that
// partial matches and split rescaling never lose value to rounding.
type lot struct {
	eventID   string
	acquired  Date
	seq       int
	remaining Quantity
	cost      Money // remaining acquisition cost, excluding fees
	fees      Money // remaining acquisition fees
}

// newLot opens a lot from an acquisition event.
func newLot(e Event) *lot {
	return &lot{
		eventID:   e.ID,
		acquired:  e.Date,
		seq:       e.Seq,
		remaining: e.Quantity,
		cost:      e.Cost(),
		fees:      e.Fees,
	}
}

// unitCost returns the cost per unit of the remaining quantity.
func (l *lot) unitCost() Money { return l.cost.Div(l.remaining) }

// take removes up to quantity units from the lot and returns the quantity
// actually taken with the proportional slice of cost and fees.
func (l *lot) take(quantity Quantity) (taken Quantity, cost, fees Money) {
	taken = quantity.Min(l.remaining)
	if taken.IsZero() {
		return taken, M(0, l.cost.Currency()), M(0, l.fees.Currency())
	}
	if taken.Equal(l.remaining) {
		cost, fees = l.cost, l.fees
	} else {
		cost = l.cost.Mul(taken).Div(l.remaining)
		fees = l.fees.Mul(taken).Div(l.remaining)
	}
	l.remaining = l.remaining.Sub(taken)
	l.cost = l.cost.Sub(cost)
	l.fees = l.fees.Sub(fees)
	return taken, cost, fees
}

// rescale applies a split ratio to the lot: the remaining quantity is
// multiplied by the ratio while the remaining cost is left untouched, so the
// lot's total cost is invariant and its unit cost is divided by the ratio.
func (l *lot) rescale(ratio Quantity) {
	l.remaining = l.remaining.Mul(ratio)
}

type lots []*lot

// open returns the lots that still hold units.
func (ls lots) open() lots {
	var kept lots
	for _, l := range ls {
		if l.remaining.IsPositive() {
			kept = append(kept, l)
		}
	}
	return kept
}

// totalQuantity sums the remaining quantity across lots.
func (ls lots) totalQuantity() Quantity {
	var total Quantity
	for _, l := range ls {
		total = total.Add(l.remaining)
	}
	return total
}

// totalCost sums the remaining cost across lots, fees excluded.
func (ls lots) totalCost() Money {
	var total Money
	for _, l := range ls {
		total = total.Add(l.cost)
	}
	return total
}
