package cgtpool

import (
	"slices"
)

// TaxReport is the per-tax-year aggregation of a matching run. It is a pure
// function of its input: re-aggregating the same result yields identical
// totals.
type TaxReport struct {
	Years  []TaxYearSummary    // ascending by year
	Income []IncomeYearSummary // ascending by year
}

// TaxYearSummary totals the matched disposals falling inside one UK tax
// year (6 April to 5 April inclusive).
type TaxYearSummary struct {
	Year           TaxYear
	Proceeds       Money // total disposal proceeds
	AllowableCosts Money // total cost basis, disposal fees included
	Gain           Money // net gain or loss
	Disposals      []MatchedDisposal   // ordered by date
	Pools          []PoolYearBreakdown // ordered by pool key
	Warnings       []Warning           // warnings dated inside the year
}

// PoolYearBreakdown totals one pool's disposals within a tax year.
type PoolYearBreakdown struct {
	Pool           PoolKey
	Proceeds       Money
	AllowableCosts Money
	Gain           Money
	Disposals      int // matched disposal records in the year
}

// IncomeYearSummary totals the income side channel for one tax year.
type IncomeYearSummary struct {
	Year    TaxYear
	Entries []IncomeEntry // ordered by date
	Totals  []Money       // one total per currency, ordered by currency code
}

// Aggregate assigns every matched disposal and income entry of a result to
// its UK tax year and sums proceeds, allowable costs and gains per year,
// per pool and overall. Warnings are attached to the year they occurred in.
func Aggregate(result *Result) *TaxReport {
	report := &TaxReport{}

	years := make(map[TaxYear]*TaxYearSummary)
	yearOf := func(y TaxYear) *TaxYearSummary {
		s, ok := years[y]
		if !ok {
			s = &TaxYearSummary{Year: y}
			years[y] = s
		}
		return s
	}

	disposals := result.Disposals()
	// The per-pool slices are already chronological; a stable sort by date
	// keeps the pool-key order for same-day records, so output order is
	// deterministic.
	slices.SortStableFunc(disposals, func(a, b MatchedDisposal) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		default:
			return 0
		}
	})

	pools := make(map[TaxYear]map[PoolKey]*PoolYearBreakdown)
	for _, d := range disposals {
		s := yearOf(TaxYearOf(d.Date))
		allowable := d.Cost.Add(d.Fees)
		s.Proceeds = s.Proceeds.Add(d.Proceeds)
		s.AllowableCosts = s.AllowableCosts.Add(allowable)
		s.Gain = s.Gain.Add(d.Gain)
		s.Disposals = append(s.Disposals, d)

		if pools[s.Year] == nil {
			pools[s.Year] = make(map[PoolKey]*PoolYearBreakdown)
		}
		b, ok := pools[s.Year][d.Pool]
		if !ok {
			b = &PoolYearBreakdown{Pool: d.Pool}
			pools[s.Year][d.Pool] = b
		}
		b.Proceeds = b.Proceeds.Add(d.Proceeds)
		b.AllowableCosts = b.AllowableCosts.Add(allowable)
		b.Gain = b.Gain.Add(d.Gain)
		b.Disposals++
	}

	for _, w := range result.Warnings() {
		yearOf(TaxYearOf(w.Date)).Warnings = append(yearOf(TaxYearOf(w.Date)).Warnings, w)
	}

	income := make(map[TaxYear]*IncomeYearSummary)
	for _, entry := range result.Income() {
		y := TaxYearOf(entry.Date)
		s, ok := income[y]
		if !ok {
			s = &IncomeYearSummary{Year: y}
			income[y] = s
		}
		s.Entries = append(s.Entries, entry)
	}

	for y, s := range years {
		for _, b := range sortedBreakdowns(pools[y]) {
			s.Pools = append(s.Pools, *b)
		}
		report.Years = append(report.Years, *s)
	}
	slices.SortFunc(report.Years, func(a, b TaxYearSummary) int { return int(a.Year - b.Year) })

	for _, s := range income {
		slices.SortStableFunc(s.Entries, func(a, b IncomeEntry) int {
			switch {
			case a.Date.Before(b.Date):
				return -1
			case a.Date.After(b.Date):
				return 1
			default:
				return 0
			}
		})
		s.Totals = incomeTotals(s.Entries)
		report.Income = append(report.Income, *s)
	}
	slices.SortFunc(report.Income, func(a, b IncomeYearSummary) int { return int(a.Year - b.Year) })

	return report
}

// TotalGain sums the net gain across all tax years in the report.
func (r *TaxReport) TotalGain() Money {
	var total Money
	for _, y := range r.Years {
		total = total.Add(y.Gain)
	}
	return total
}

// Year returns the summary for one tax year, or nil when the report holds
// no disposals for it.
func (r *TaxReport) Year(y TaxYear) *TaxYearSummary {
	for i := range r.Years {
		if r.Years[i].Year == y {
			return &r.Years[i]
		}
	}
	return nil
}

func sortedBreakdowns(m map[PoolKey]*PoolYearBreakdown) []*PoolYearBreakdown {
	keys := make([]PoolKey, 0, len(m))
	for k := range m {
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
	out := make([]*PoolYearBreakdown, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// incomeTotals sums entries per currency, ordered by currency code.
func incomeTotals(entries []IncomeEntry) []Money {
	byCurrency := make(map[string]Money)
	var codes []string
	for _, e := range entries {
		c := e.Amount.Currency()
		if _, ok := byCurrency[c]; !ok {
			codes = append(codes, c)
		}
		byCurrency[c] = byCurrency[c].Add(e.Amount)
	}
	slices.Sort(codes)
	totals := make([]Money, 0, len(codes))
	for _, c := range codes {
		totals = append(totals, byCurrency[c])
	}
	return totals
}
