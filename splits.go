package cgtpool

// adjustForSplit rescales a pool's holding for a stock split: every open lot
// acquired strictly before the split date has its quantity multiplied by the
// ratio with its total cost left invariant, and the Section 104 pool's
// quantity is rescaled the same way. Lots opened on or after the split date
// are untouched.
//
// A split that finds no prior holding at all cannot be applied consistently
// and fails with a SplitOrderingError.
func adjustForSplit(pool *Section104Pool, open lots, e Event) error {
	rescaled := false
	for _, l := range open {
		if l.remaining.IsPositive() && l.acquired.Before(e.Date) {
			l.rescale(e.Ratio)
			rescaled = true
		}
	}
	if pool.Quantity.IsPositive() {
		pool.Rescale(e.Ratio)
		rescaled = true
	}
	if !rescaled {
		return &SplitOrderingError{Event: e}
	}
	return nil
}
