package cgtpool

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// bbWindowDays is the bed-&-breakfast look-ahead: a disposal matches
// acquisitions dated strictly after it and up to 30 calendar days later,
// day 30 included.
const bbWindowDays = 30

// MatchRule identifies which HMRC share-identification rule produced a match.
type MatchRule string

const (
	RuleSameDay         MatchRule = "same-day"
	RuleBedAndBreakfast MatchRule = "bed-and-breakfast"
	RuleSection104      MatchRule = "section-104"
)

// MatchedDisposal is the write-once outcome of matching part of a disposal
// against one acquisition lot or against the Section 104 pool. A single
// disposal event may produce several records; their quantities sum exactly
// to the event's quantity.
type MatchedDisposal struct {
	DisposalID      string    // the disposal event this record belongs to
	Pool            PoolKey   // the asset pool
	Date            Date      // disposal date
	Rule            MatchRule // which rule claimed this slice
	Quantity        Quantity  // units matched by this record
	AcquisitionID   string    // matched lot's event id, empty for section-104
	AcquisitionDate Date      // matched lot's date, zero for section-104
	Cost            Money     // cost basis, acquisition fees included
	Proceeds        Money     // this record's share of the disposal proceeds
	Fees            Money     // this record's share of the disposal fees
	Gain            Money     // Proceeds - Cost - Fees

	// Display annotations, filled by Annotate. Never used in arithmetic.
	AssetName    string
	PlatformName string
}

// MarshalJSON implements the json.Marshaler interface for MatchedDisposal
// with a canonical field order, so identical inputs produce byte-identical
// output.
func (m MatchedDisposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("disposal", m.DisposalID)
	w.Append("pool", m.Pool)
	w.Append("date", m.Date)
	w.Append("rule", m.Rule)
	w.Append("quantity", m.Quantity)
	w.Optional("acquisition", m.AcquisitionID)
	if !m.AcquisitionDate.IsZero() {
		w.Append("acquired", m.AcquisitionDate)
	}
	w.Append("cost", m.Cost)
	w.Append("proceeds", m.Proceeds)
	w.Append("fees", m.Fees)
	w.Append("gain", m.Gain)
	w.Optional("assetName", m.AssetName)
	w.Optional("platformName", m.PlatformName)
	return w.MarshalJSON()
}

// IncomeEntry is an income event passed through the engine untouched, keyed
// by date, currency and amount. Income never reaches the pool ledger.
type IncomeEntry struct {
	EventID string  `json:"event"`
	Pool    PoolKey `json:"pool"`
	Date    Date    `json:"date"`
	Amount  Money   `json:"amount"`
}

// PoolResult is the outcome of one pool's pass.
type PoolResult struct {
	Pool      PoolKey
	Disposals []MatchedDisposal // chronological, grouped per disposal event
	Income    []IncomeEntry     // side channel, in event order
	Warnings  []Warning
	Holding   Section104Pool // residual pooled units as of the end of the stream
}

// Result is the outcome of processing a full multi-pool event stream.
type Result struct {
	Pools []*PoolResult // ordered by pool key
}

// Disposals returns all matched disposals across pools, pool by pool.
func (r *Result) Disposals() []MatchedDisposal {
	var all []MatchedDisposal
	for _, p := range r.Pools {
		all = append(all, p.Disposals...)
	}
	return all
}

// Income returns all income entries across pools.
func (r *Result) Income() []IncomeEntry {
	var all []IncomeEntry
	for _, p := range r.Pools {
		all = append(all, p.Income...)
	}
	return all
}

// Warnings returns all warnings across pools.
func (r *Result) Warnings() []Warning {
	var all []Warning
	for _, p := range r.Pools {
		all = append(all, p.Warnings...)
	}
	return all
}

// Engine applies the three HMRC share-identification rules, in precedence
// order, to a chronological event stream. It is a pure transform: identical
// inputs yield byte-identical outputs, and no state is carried between runs.
type Engine struct {
	log zerolog.Logger
}

// NewEngine returns an engine that logs nothing.
func NewEngine() *Engine {
	return &Engine{log: zerolog.Nop()}
}

// WithLogger returns an engine that logs match decisions to the given logger.
func (e *Engine) WithLogger(log zerolog.Logger) *Engine {
	return &Engine{log: log}
}

// Process groups the event stream by pool key and runs one pass per pool,
// in sorted key order. Pools are independent: a fatal error in one pool
// (over-disposal, split ordering) removes only that pool's results, and all
// pool errors are joined into the returned error.
func (e *Engine) Process(events []Event) (*Result, error) {
	pools := GroupByPool(events)
	keys := make([]PoolKey, 0, len(pools))
	for k := range pools {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b PoolKey) int {
		if a.less(b) {
			return -1
		}
		if b.less(a) {
			return 1
		}
		return 0
	})

	result := &Result{}
	var errs []error
	for _, k := range keys {
		pr, err := e.ProcessPool(k, pools[k])
		if err != nil {
			errs = append(errs, &PoolError{Pool: k, Err: err})
			continue
		}
		result.Pools = append(result.Pools, pr)
	}
	return result, errors.Join(errs...)
}

// ProcessPool runs a single linear, day-buffered pass over one pool's
// events and returns its matched disposals, income pass-through, warnings
// and residual Section 104 holding.
func (e *Engine) ProcessPool(key PoolKey, events []Event) (*PoolResult, error) {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sortEvents(sorted)

	p := &pass{
		log: e.log.With().Stringer("pool", key).Logger(),
		res: &PoolResult{Pool: key},
	}
	for _, ev := range sorted {
		if ev.Pool != key {
			return nil, fmt.Errorf("event %s belongs to pool %s, not %s", ev.ID, ev.Pool, key)
		}
		if err := ev.Validate(); err != nil {
			return nil, err
		}
	}

	i := 0
	for i < len(sorted) {
		day := sorted[i].Date

		// Buffer the whole day before resolving anything: same-day matching
		// needs acquisitions that appear later in the day than the disposal.
		var dayOps []poolOp
		var dayLots lots
		var dayDisposals []*pendingDisposal
		for ; i < len(sorted) && sorted[i].Date == day; i++ {
			ev := sorted[i]
			switch ev.Kind {
			case KindAcquisition:
				l := newLot(ev)
				dayLots = append(dayLots, l)
				p.ledger = append(p.ledger, l)
				dayOps = append(dayOps, poolOp{kind: opAcquire, lot: l})
			case KindDisposal:
				d := &pendingDisposal{event: ev, remaining: ev.Quantity}
				dayDisposals = append(dayDisposals, d)
				dayOps = append(dayOps, poolOp{kind: opDispose, disposal: d})
			case KindSplit:
				dayOps = append(dayOps, poolOp{kind: opSplit, event: ev})
			case KindCapitalReturn:
				dayOps = append(dayOps, poolOp{kind: opCapitalReturn, event: ev})
			case KindIncome:
				p.res.Income = append(p.res.Income, IncomeEntry{
					EventID: ev.ID, Pool: ev.Pool, Date: ev.Date, Amount: ev.Amount,
				})
			}
		}

		// Rule 1: same-day. Each of the day's disposals consumes the day's
		// acquisition lots FIFO in sequence order.
		for _, d := range dayDisposals {
			for _, l := range dayLots {
				if d.remaining.IsZero() {
					break
				}
				p.claim(d, l, RuleSameDay)
			}
		}

		// Rule 2: bed & breakfast. The day's leftover acquisitions are
		// offered to earlier disposals whose 30-day window covers today,
		// earliest disposal first.
		for _, d := range p.pending {
			if d.remaining.IsZero() || day.After(d.event.Date.Add(bbWindowDays)) {
				continue
			}
			for _, l := range dayLots {
				if d.remaining.IsZero() {
					break
				}
				p.claim(d, l, RuleBedAndBreakfast)
			}
		}

		// From here on nothing can claim today's lots: disposals only match
		// acquisitions on or after their own date. Remainders are queued for
		// the Section 104 pool at today's position; disposals stay pending
		// until their own window closes.
		p.queue = append(p.queue, dayOps...)
		for _, d := range dayDisposals {
			if d.remaining.IsPositive() {
				p.pending = append(p.pending, d)
			}
		}

		if err := p.drain(day, false); err != nil {
			return nil, err
		}
		p.pending = slices.DeleteFunc(p.pending, func(d *pendingDisposal) bool {
			return d.remaining.IsZero() || day.After(d.event.Date.Add(bbWindowDays))
		})
	}

	// End of stream closes every window.
	if err := p.drain(Date{}, true); err != nil {
		return nil, err
	}
	p.res.Holding = p.pool
	return p.res, nil
}

// pendingDisposal buffers a disposal whose bed-&-breakfast window is still
// open. Matches accumulate here and are emitted together, in rule order,
// once the disposal reaches the Section 104 stage.
type pendingDisposal struct {
	event     Event
	remaining Quantity
	matches   []MatchedDisposal
}

type opKind int

const (
	opAcquire opKind = iota
	opDispose
	opSplit
	opCapitalReturn
)

// poolOp is a deferred Section 104 operation. Ops are queued in strict
// (date, seq) order and executed only once every op ahead of them is final,
// so the pool's averaged state always evolves chronologically even though
// disposals resolve up to 30 days late.
type poolOp struct {
	kind     opKind
	lot      *lot             // opAcquire
	disposal *pendingDisposal // opDispose
	event    Event            // opSplit, opCapitalReturn
}

// pass is the mutable state of one pool's pass. It is exclusively owned by
// the engine for the duration of ProcessPool.
type pass struct {
	log     zerolog.Logger
	res     *PoolResult
	pool    Section104Pool
	ledger  lots               // open lots not yet folded into the pool
	pending []*pendingDisposal // disposals with an open look-ahead window
	queue   []poolOp           // deferred pool ops, chronological
}

// claim matches as much of the disposal as the lot can cover and records
// the outcome under the given rule.
func (p *pass) claim(d *pendingDisposal, l *lot, rule MatchRule) {
	taken, cost, fees := l.take(d.remaining)
	if taken.IsZero() {
		return
	}
	p.record(d, rule, taken, cost.Add(fees), l.eventID, l.acquired)
	p.log.Debug().
		Str("rule", string(rule)).
		Str("disposal", d.event.ID).
		Stringer("disposed", d.event.Date).
		Str("acquisition", l.eventID).
		Stringer("acquired", l.acquired).
		Stringer("quantity", taken).
		Msg("matched")
}

// record appends a match to the disposal and reduces its remainder. The
// disposal's own proceeds and fees are allocated proportionally to the
// matched quantity.
func (p *pass) record(d *pendingDisposal, rule MatchRule, quantity Quantity, cost Money, acqID string, acqDate Date) {
	proceeds := d.event.Price.Mul(quantity)
	fees := d.event.Fees.Mul(quantity).Div(d.event.Quantity)
	d.matches = append(d.matches, MatchedDisposal{
		DisposalID:      d.event.ID,
		Pool:            d.event.Pool,
		Date:            d.event.Date,
		Rule:            rule,
		Quantity:        quantity,
		AcquisitionID:   acqID,
		AcquisitionDate: acqDate,
		Cost:            cost,
		Proceeds:        proceeds,
		Fees:            fees,
		Gain:            proceeds.Sub(cost).Sub(fees),
	})
	d.remaining = d.remaining.Sub(quantity)
}

// drain executes queued pool ops from the front for as long as they are
// final. A disposal op is final once its remainder is zero, its window has
// closed (all days through completedThrough are ingested), or the stream has
// ended; every other op is final as soon as its day is complete.
func (p *pass) drain(completedThrough Date, atEnd bool) error {
	for len(p.queue) > 0 {
		op := p.queue[0]
		if op.kind == opDispose && !atEnd {
			d := op.disposal
			if d.remaining.IsPositive() && d.event.Date.Add(bbWindowDays).After(completedThrough) {
				return nil // window still open; everything behind it waits
			}
		}
		p.queue = p.queue[1:]
		if err := p.exec(op); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) exec(op poolOp) error {
	switch op.kind {
	case opAcquire:
		p.fold(op.lot)
	case opDispose:
		return p.dispose(op.disposal)
	case opSplit:
		if err := p.split(op.event); err != nil {
			return err
		}
	case opCapitalReturn:
		basis := p.pool.Cost
		if p.pool.ReturnCapital(op.event.Amount) {
			w := capitalReturnExceedsBasis(op.event, basis)
			p.res.Warnings = append(p.res.Warnings, w)
			p.log.Warn().Str("event", op.event.ID).Msg(w.Message)
		}
	}
	return nil
}

// fold moves a lot's unmatched remainder into the Section 104 pool, fees
// included, and closes the lot.
func (p *pass) fold(l *lot) {
	if l.remaining.IsPositive() {
		p.pool.Acquire(l.remaining, l.cost.Add(l.fees))
		p.log.Debug().
			Str("acquisition", l.eventID).
			Stringer("quantity", l.remaining).
			Stringer("pooled", p.pool.Quantity).
			Msg("folded into section 104 pool")
	}
	l.remaining = Quantity{}
	p.ledger = p.ledger.open()
}

// dispose settles a disposal's Section 104 remainder and emits all of its
// matches in rule order.
func (p *pass) dispose(d *pendingDisposal) error {
	if d.remaining.IsPositive() {
		if d.remaining.GreaterThan(p.pool.Quantity) {
			return &OverDisposalError{
				Event:     d.event,
				Requested: d.event.Quantity,
				Matched:   d.event.Quantity.Sub(d.remaining),
			}
		}
		quantity := d.remaining
		cost := p.pool.Dispose(quantity)
		p.record(d, RuleSection104, quantity, cost, "", Date{})
		p.log.Debug().
			Str("rule", string(RuleSection104)).
			Str("disposal", d.event.ID).
			Stringer("quantity", quantity).
			Stringer("pooled", p.pool.Quantity).
			Msg("matched")
	}
	p.res.Disposals = append(p.res.Disposals, d.matches...)
	d.matches = nil
	return nil
}

// split applies the split adjuster at the event's chronological position.
func (p *pass) split(e Event) error {
	if err := adjustForSplit(&p.pool, p.ledger, e); err != nil {
		return err
	}
	p.log.Debug().
		Str("event", e.ID).
		Stringer("ratio", e.Ratio).
		Stringer("pooled", p.pool.Quantity).
		Msg("split applied")
	return nil
}
