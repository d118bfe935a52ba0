package cgtpool

// Section104Pool is the averaged-cost holding of one asset pool: every unit
// not matched by the same-day or bed-&-breakfast rules ends up here, and
// disposals against it carry the pool's average cost.
//
// Invariants: Cost and Quantity never go negative, and Cost is zero exactly
// when Quantity is zero.
type Section104Pool struct {
	Quantity Quantity `json:"quantity"`
	Cost     Money    `json:"cost"`
}

// Acquire folds units into the pool at the given total cost (fees included).
func (p *Section104Pool) Acquire(quantity Quantity, cost Money) {
	p.Quantity = p.Quantity.Add(quantity)
	p.Cost = p.Cost.Add(cost)
}

// AverageCost returns the pool's cost per unit. It is only meaningful when
// the pool holds units.
func (p *Section104Pool) AverageCost() Money {
	return p.Cost.Div(p.Quantity)
}

// Dispose removes units from the pool and returns their cost basis at the
// pool's average cost. Removing the full holding transfers the exact
// remaining cost, so no dust is left behind by the division.
// The caller must ensure quantity does not exceed the pool's holding.
func (p *Section104Pool) Dispose(quantity Quantity) Money {
	var cost Money
	if quantity.Equal(p.Quantity) {
		cost = p.Cost
	} else {
		cost = p.Cost.Mul(quantity).Div(p.Quantity)
	}
	p.Quantity = p.Quantity.Sub(quantity)
	p.Cost = p.Cost.Sub(cost)
	return cost
}

// ReturnCapital reduces the pool's cost basis by a cash amount. The cost is
// clamped at zero; clamped reports whether the amount exceeded the basis.
func (p *Section104Pool) ReturnCapital(amount Money) (clamped bool) {
	if amount.GreaterThan(p.Cost) {
		p.Cost = M(0, p.Cost.Currency())
		return true
	}
	p.Cost = p.Cost.Sub(amount)
	return false
}

// Rescale applies a split ratio: the pooled quantity is multiplied by the
// ratio while the pooled cost is invariant.
func (p *Section104Pool) Rescale(ratio Quantity) {
	p.Quantity = p.Quantity.Mul(ratio)
}
