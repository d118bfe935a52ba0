package cgtpool

import (
	"reflect"
	"testing"
)

func record(id, date string, quantity, cost, fees, proceeds float64) MatchedDisposal {
	return MatchedDisposal{
		DisposalID: id,
		Pool:       wdg,
		Date:       MustParseDate(date),
		Rule:       RuleSection104,
		Quantity:   Q(quantity),
		Cost:       M(cost, "GBP"),
		Proceeds:   M(proceeds, "GBP"),
		Fees:       M(fees, "GBP"),
		Gain:       M(proceeds-cost-fees, "GBP"),
	}
}

func TestAggregateSplitsOnTaxYearBoundary(t *testing.T) {
	// 5 April is the last day of 2023/24 and 6 April the first of 2024/25.
	result := &Result{Pools: []*PoolResult{{
		Pool: wdg,
		Disposals: []MatchedDisposal{
			record("d1", "2024-04-05", 5, 250, 0, 260),
			record("d2", "2024-04-06", 5, 250, 10, 300),
		},
	}}}

	report := Aggregate(result)
	if len(report.Years) != 2 {
		t.Fatalf("got %d years, want 2", len(report.Years))
	}
	first := report.Years[0]
	if first.Year != TaxYear(2023) {
		t.Errorf("first year = %s, want 2023/24", first.Year)
	}
	if !first.Gain.Equal(M(10, "GBP")) {
		t.Errorf("2023/24 gain = %s, want 10", first.Gain)
	}
	second := report.Years[1]
	if second.Year != TaxYear(2024) {
		t.Errorf("second year = %s, want 2024/25", second.Year)
	}
	// Allowable costs include the disposal fees.
	if !second.AllowableCosts.Equal(M(260, "GBP")) {
		t.Errorf("2024/25 allowable costs = %s, want 260", second.AllowableCosts)
	}
	if !second.Gain.Equal(M(40, "GBP")) {
		t.Errorf("2024/25 gain = %s, want 40", second.Gain)
	}
	if !report.TotalGain().Equal(M(50, "GBP")) {
		t.Errorf("total gain = %s, want 50", report.TotalGain())
	}
}

func TestAggregatePerPoolBreakdown(t *testing.T) {
	gadget := PoolKey{Asset: "GADGET"}
	other := record("d2", "2023-06-02", 2, 50, 0, 70)
	other.Pool = gadget
	result := &Result{Pools: []*PoolResult{
		{Pool: gadget, Disposals: []MatchedDisposal{other}},
		{Pool: wdg, Disposals: []MatchedDisposal{record("d1", "2023-06-01", 5, 250, 0, 260)}},
	}}

	report := Aggregate(result)
	if len(report.Years) != 1 {
		t.Fatalf("got %d years, want 1", len(report.Years))
	}
	pools := report.Years[0].Pools
	if len(pools) != 2 {
		t.Fatalf("got %d pool breakdowns, want 2", len(pools))
	}
	// Breakdowns are sorted by pool key.
	if pools[0].Pool != gadget || pools[1].Pool != wdg {
		t.Errorf("breakdown order = %s, %s, want GADGET, WIDGET", pools[0].Pool, pools[1].Pool)
	}
	if pools[0].Disposals != 1 || !pools[0].Gain.Equal(M(20, "GBP")) {
		t.Errorf("GADGET breakdown = %d records, gain %s, want 1 and 20", pools[0].Disposals, pools[0].Gain)
	}
}

func TestAggregateWarningsAttachToTheirYear(t *testing.T) {
	result := &Result{Pools: []*PoolResult{{
		Pool:      wdg,
		Disposals: []MatchedDisposal{record("d1", "2023-06-01", 5, 250, 0, 260)},
		Warnings: []Warning{{
			Pool: wdg, EventID: "c1", Date: MustParseDate("2023-07-01"),
			Message: "capital return of £600.00 exceeds remaining cost basis £500.00; basis clamped at zero",
		}},
	}}}

	report := Aggregate(result)
	year := report.Year(TaxYear(2023))
	if year == nil {
		t.Fatal("no summary for 2023/24")
	}
	if len(year.Warnings) != 1 || year.Warnings[0].EventID != "c1" {
		t.Errorf("warnings = %v, want the c1 warning", year.Warnings)
	}
	if report.Year(TaxYear(2020)) != nil {
		t.Error("Year() returned a summary for an empty year")
	}
}

func TestAggregateIncomePerYearAndCurrency(t *testing.T) {
	result := &Result{Pools: []*PoolResult{{
		Pool: wdg,
		Income: []IncomeEntry{
			{EventID: "i1", Pool: wdg, Date: MustParseDate("2023-05-01"), Amount: M(35, "GBP")},
			{EventID: "i2", Pool: wdg, Date: MustParseDate("2023-06-01"), Amount: M(20, "USD")},
			{EventID: "i3", Pool: wdg, Date: MustParseDate("2023-07-01"), Amount: M(15, "GBP")},
			{EventID: "i4", Pool: wdg, Date: MustParseDate("2024-05-01"), Amount: M(10, "GBP")},
		},
	}}}

	report := Aggregate(result)
	if len(report.Income) != 2 {
		t.Fatalf("got %d income years, want 2", len(report.Income))
	}
	first := report.Income[0]
	if first.Year != TaxYear(2023) || len(first.Entries) != 3 {
		t.Fatalf("first income year = %s with %d entries, want 2023/24 with 3", first.Year, len(first.Entries))
	}
	// One total per currency, ordered by currency code.
	if len(first.Totals) != 2 {
		t.Fatalf("got %d totals, want 2", len(first.Totals))
	}
	if !first.Totals[0].Equal(M(50, "GBP")) {
		t.Errorf("GBP total = %s, want 50", first.Totals[0])
	}
	if !first.Totals[1].Equal(M(20, "USD")) {
		t.Errorf("USD total = %s, want 20", first.Totals[1])
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	result := &Result{Pools: []*PoolResult{{
		Pool: wdg,
		Disposals: []MatchedDisposal{
			record("d1", "2024-04-05", 5, 250, 0, 260),
			record("d2", "2024-04-06", 5, 250, 10, 300),
		},
	}}}
	if !reflect.DeepEqual(Aggregate(result), Aggregate(result)) {
		t.Error("aggregating the same result twice gave different reports")
	}
}
