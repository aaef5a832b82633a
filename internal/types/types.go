package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SectorQuote is one cycle's view of a sector ETF: current price, the price
// one year ago and the derived change. A quote is never cached across cycles.
type SectorQuote struct {
	Sector      string
	Ticker      string
	Current     decimal.Decimal
	YearAgo     decimal.Decimal
	Unavailable bool
	Cause       string // human-readable reason when Unavailable
}

// PercentChange returns (current-yearAgo)/yearAgo*100 rounded to two places.
// Undefined (zero) when the quote is unavailable or the base price is zero.
func (q SectorQuote) PercentChange() decimal.Decimal {
	if q.Unavailable || q.YearAgo.IsZero() {
		return decimal.Zero
	}
	hundred := decimal.NewFromInt(100)
	return q.Current.Sub(q.YearAgo).Div(q.YearAgo).Mul(hundred).Round(2)
}

// Insight renders the quote as a prompt-ready sentence. Degraded quotes
// render their cause instead of numbers so the pipeline never blocks on them.
func (q SectorQuote) Insight() string {
	if q.Unavailable {
		if q.Cause != "" {
			return fmt.Sprintf("Could not retrieve data for %s: %s.", q.Ticker, q.Cause)
		}
		return fmt.Sprintf("Could not retrieve data for %s.", q.Ticker)
	}
	pct := q.PercentChange()
	sign := ""
	if pct.Sign() >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s sector is at $%s, %s%s%% over the past year.",
		q.Ticker, q.Current.StringFixed(2), sign, pct.StringFixed(2))
}

// IndicatorValue is the latest observation of a macroeconomic series.
// Absent values carry through to rendered text as a placeholder.
type IndicatorValue struct {
	SeriesID string
	Value    decimal.Decimal
	AsOf     string
	Present  bool
}

// Placeholder substituted in prompts when an indicator is absent.
const IndicatorUnavailable = "unavailable"

// Render returns the numeric value, or the placeholder when absent.
func (v IndicatorValue) Render() string {
	if !v.Present {
		return IndicatorUnavailable
	}
	return v.Value.String()
}

// Prompt is the aggregated input handed to the text generator.
type Prompt struct {
	Sector string
	Ticker string
	Text   string
}

// PostDraft is a finished, length-clamped post ready to publish.
type PostDraft struct {
	Sector string
	Body   string
}

// ReplyTarget is a post discovered via search. Read-only: the bot never
// mutates or deletes others' content.
type ReplyTarget struct {
	ID           string `json:"id"`
	AuthorHandle string `json:"author_handle"`
	Text         string `json:"text"`
}
