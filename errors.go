package cgtpool

import "fmt"

// OverDisposalError reports a disposal whose quantity exceeds everything the
// pool ever acquired net of prior disposals. It is fatal for the affected
// pool's pass: no matched output is emitted for that pool.
type OverDisposalError struct {
	Event     Event    // the offending disposal event
	Requested Quantity // the disposal's full quantity
	Matched   Quantity // what the three rules could account for
}

func (e *OverDisposalError) Error() string {
	return fmt.Sprintf("pool %s: disposal %s on %s requests %s units but only %s could be matched (short %s)",
		e.Event.Pool, e.Event.ID, e.Event.Date, e.Requested, e.Matched, e.Requested.Sub(e.Matched))
}

// SplitOrderingError reports a split event that references a pool with no
// prior holding to rescale. It is fatal for the affected pool's pass.
type SplitOrderingError struct {
	Event Event // the offending split event
}

func (e *SplitOrderingError) Error() string {
	return fmt.Sprintf("pool %s: split %s on %s has no prior holding to rescale",
		e.Event.Pool, e.Event.ID, e.Event.Date)
}

// PoolError attributes a pool-fatal error to its pool key so that callers
// processing many pools can decide which results to keep.
type PoolError struct {
	Pool PoolKey
	Err  error
}

func (e *PoolError) Error() string { return e.Err.Error() }
func (e *PoolError) Unwrap() error { return e.Err }

// Warning is a non-fatal condition encountered during a pool's pass. The
// pass continues; the warning is surfaced with the pool's result.
type Warning struct {
	Pool    PoolKey `json:"pool"`
	EventID string  `json:"event"`
	Date    Date    `json:"date"`
	Message string  `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Date, w.Pool, w.Message)
}

// capitalReturnExceedsBasis builds the warning for a capital return clamped
// at the pool's remaining cost basis.
func capitalReturnExceedsBasis(e Event, basis Money) Warning {
	return Warning{
		Pool:    e.Pool,
		EventID: e.ID,
		Date:    e.Date,
		Message: fmt.Sprintf("capital return of %s exceeds remaining cost basis %s; basis clamped at zero", e.Amount, basis),
	}
}
