// Package cgtpool computes UK capital-gains-tax outcomes for chronological
// streams of asset-pool events.
//
// For each pool (one distinct tradable asset per account grouping) the
// matching engine applies, in strict precedence order, the three HMRC
// share-identification rules: same-day matching, the 30-day
// bed-&-breakfast rule, and the Section 104 averaged holding pool. The
// engine consumes already currency-converted, date-ordered events and
// emits matched disposal records with computed gains, which the aggregator
// groups into UK tax years (6 April to 5 April).
//
// The package is a pure in-memory transform: it performs no I/O beyond the
// optional JSONL event codec, carries no state between runs, and produces
// byte-identical output for identical input.
package cgtpool
