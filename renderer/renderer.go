// Package renderer turns aggregated tax reports into markdown. It is the
// presentation collaborator: it consumes the engine's output and holds no
// matching logic.
package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/uktax/cgtpool"
)

// TaxReportMarkdown renders the full per-tax-year gains report.
func TaxReportMarkdown(report *cgtpool.TaxReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Capital Gains Report\n\n")
	if len(report.Years) == 0 {
		fmt.Fprint(&b, "No disposals.\n")
		return b.String()
	}

	for i := range report.Years {
		TaxYearMarkdown(&b, &report.Years[i])
	}

	fmt.Fprint(&b, "## All Years\n\n")
	fmt.Fprintf(&b, "Net gain across all years: **%s**\n", report.TotalGain().Rounded().SignedString())

	return b.String()
}

// TaxYearMarkdown renders one tax year's disposals and totals.
func TaxYearMarkdown(w io.Writer, year *cgtpool.TaxYearSummary) {
	fmt.Fprintf(w, "## Tax Year %s (%s - %s)\n\n", year.Year, year.Year.Start(), year.Year.End())

	fmt.Fprintln(w, "| Date | Asset | Rule | Quantity | Proceeds | Allowable Cost | Gain |")
	fmt.Fprintln(w, "|:---|:---|:---|---:|---:|---:|---:|")
	for _, d := range year.Disposals {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			d.Date,
			assetLabel(d),
			d.Rule,
			d.Quantity,
			d.Proceeds.Rounded(),
			d.Cost.Add(d.Fees).Rounded(),
			d.Gain.Rounded().SignedString(),
		)
	}
	fmt.Fprintf(w, "| **Total** | | | | **%s** | **%s** | **%s** |\n\n",
		year.Proceeds.Rounded(),
		year.AllowableCosts.Rounded(),
		year.Gain.Rounded().SignedString(),
	)

	if len(year.Pools) > 1 {
		fmt.Fprint(w, "### Per Pool\n\n")
		fmt.Fprintln(w, "| Pool | Disposals | Proceeds | Allowable Cost | Gain |")
		fmt.Fprintln(w, "|:---|---:|---:|---:|---:|")
		for _, p := range year.Pools {
			fmt.Fprintf(w, "| %s | %d | %s | %s | %s |\n",
				p.Pool,
				p.Disposals,
				p.Proceeds.Rounded(),
				p.AllowableCosts.Rounded(),
				p.Gain.Rounded().SignedString(),
			)
		}
		fmt.Fprintln(w)
	}

	for _, warning := range year.Warnings {
		fmt.Fprintf(w, "> ⚠️ %s\n\n", warning)
	}
}

// IncomeMarkdown renders the income side-channel summary per tax year.
func IncomeMarkdown(report *cgtpool.TaxReport) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Income Report\n\n")
	if len(report.Income) == 0 {
		fmt.Fprint(&b, "No income events.\n")
		return b.String()
	}

	for _, year := range report.Income {
		fmt.Fprintf(&b, "## Tax Year %s\n\n", year.Year)
		fmt.Fprintln(&b, "| Date | Pool | Amount |")
		fmt.Fprintln(&b, "|:---|:---|---:|")
		for _, e := range year.Entries {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", e.Date, e.Pool, e.Amount.Rounded())
		}
		for _, total := range year.Totals {
			fmt.Fprintf(&b, "| **Total %s** | | **%s** |\n", total.Currency(), total.Rounded())
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}

// HoldingsMarkdown renders the residual Section 104 holdings at the end of
// the event stream.
func HoldingsMarkdown(result *cgtpool.Result) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Section 104 Holdings\n\n")
	fmt.Fprintln(&b, "| Pool | Quantity | Cost | Average Cost |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	for _, p := range result.Pools {
		if p.Holding.Quantity.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			p.Pool,
			p.Holding.Quantity,
			p.Holding.Cost.Rounded(),
			p.Holding.AverageCost().Rounded(),
		)
	}

	return b.String()
}

func assetLabel(d cgtpool.MatchedDisposal) string {
	if d.AssetName != "" && d.AssetName != d.Pool.Asset {
		return d.AssetName
	}
	return d.Pool.Asset
}
