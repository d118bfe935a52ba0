package cgtpool

import (
	"fmt"
	"slices"
)

// EventKind is a typed string identifying a pool event.
type EventKind string

// Event kinds understood by the matching engine.
const (
	KindAcquisition   EventKind = "acquisition"
	KindDisposal      EventKind = "disposal"
	KindSplit         EventKind = "split"
	KindCapitalReturn EventKind = "capital-return"
	KindIncome        EventKind = "income"
)

// ParseEventKind parses an event kind from its wire name.
func ParseEventKind(s string) (EventKind, error) {
	switch k := EventKind(s); k {
	case KindAcquisition, KindDisposal, KindSplit, KindCapitalReturn, KindIncome:
		return k, nil
	default:
		return "", fmt.Errorf("unknown event kind: %q", s)
	}
}

// PoolKey identifies one asset pool: a distinct tradable asset within an
// account grouping. Events, lots and Section 104 state never cross pools.
type PoolKey struct {
	Asset   string `json:"asset"`
	Account string `json:"account,omitempty"`
}

// String formats the pool key for display and logging.
func (k PoolKey) String() string {
	if k.Account == "" {
		return k.Asset
	}
	return k.Asset + "@" + k.Account
}

// less orders pool keys for deterministic iteration.
func (k PoolKey) less(o PoolKey) bool {
	if k.Asset != o.Asset {
		return k.Asset < o.Asset
	}
	return k.Account < o.Account
}

// Event is the normalized, immutable record of a single pool transaction.
// It is a tagged variant: Kind selects which of the value fields are
// meaningful. All values are already converted to the pool's settlement
// currency upstream.
type Event struct {
	ID   string    // stable identity, assigned by the source or the codec
	Pool PoolKey   // the asset pool this event belongs to
	Date Date      // calendar date
	Seq  int       // tie-break for same-day events, insertion order in the source
	Kind EventKind // selects the variant

	Quantity Quantity // units acquired or disposed (positive magnitude)
	Price    Money    // unit cost (acquisition) or unit proceeds (disposal)
	Fees     Money    // commission allocated to this event
	Ratio    Quantity // split only: new units per old unit, may be below one
	Amount   Money    // capital return or income only: total cash value
}

// Validate checks that the fields required by the event's kind are present
// and well-formed.
func (e Event) Validate() error {
	if e.Pool.Asset == "" {
		return fmt.Errorf("event %s: missing asset", e.ID)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event %s: missing date", e.ID)
	}
	switch e.Kind {
	case KindAcquisition, KindDisposal:
		if !e.Quantity.IsPositive() {
			return fmt.Errorf("event %s: %s quantity must be positive, got %s", e.ID, e.Kind, e.Quantity)
		}
		if e.Price.IsNegative() {
			return fmt.Errorf("event %s: %s unit price must not be negative, got %s", e.ID, e.Kind, e.Price)
		}
	case KindSplit:
		if !e.Ratio.IsPositive() {
			return fmt.Errorf("event %s: split ratio must be positive, got %s", e.ID, e.Ratio)
		}
	case KindCapitalReturn, KindIncome:
		if e.Amount.IsNegative() {
			return fmt.Errorf("event %s: %s amount must not be negative, got %s", e.ID, e.Kind, e.Amount)
		}
	default:
		return fmt.Errorf("event %s: unknown kind %q", e.ID, e.Kind)
	}
	return nil
}

// Cost returns the total acquisition cost excluding fees.
func (e Event) Cost() Money { return e.Price.Mul(e.Quantity) }

// Proceeds returns the total disposal proceeds excluding fees.
func (e Event) Proceeds() Money { return e.Price.Mul(e.Quantity) }

// MarshalJSON implements the json.Marshaler interface for Event, with a
// canonical field order.
func (e Event) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Optional("id", e.ID)
	w.Append("date", e.Date)
	w.Append("asset", e.Pool.Asset)
	w.Optional("account", e.Pool.Account)
	switch e.Kind {
	case KindAcquisition, KindDisposal:
		w.Append("quantity", e.Quantity)
		w.Append("price", e.Price.value)
		w.Optional("fees", e.Fees.value)
	case KindSplit:
		w.Append("ratio", e.Ratio)
	case KindCapitalReturn, KindIncome:
		w.Append("amount", e.Amount.value)
	}
	w.Optional("currency", e.currencyTag())
	return w.MarshalJSON()
}

func (e Event) currencyTag() string {
	switch e.Kind {
	case KindAcquisition, KindDisposal:
		return e.Price.Currency()
	case KindCapitalReturn, KindIncome:
		return e.Amount.Currency()
	}
	return ""
}

// sortEvents orders events chronologically, ties broken by Seq. The sort is
// stable so equal (date, seq) pairs keep their input order.
func sortEvents(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		default:
			return a.Seq - b.Seq
		}
	})
}

// GroupByPool splits an event stream by pool key. Relative event order is
// preserved within each pool.
func GroupByPool(events []Event) map[PoolKey][]Event {
	pools := make(map[PoolKey][]Event)
	for _, e := range events {
		pools[e.Pool] = append(pools[e.Pool], e)
	}
	return pools
}
