package compose

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/store"
	"histofin-bot/internal/types"
)

// Aggregator picks a sector at random each cycle and assembles a prompt from
// the market and indicator providers. The two lookups are independent:
// either may degrade without blocking the other, and the prompt is always
// syntactically valid with whatever placeholder text degraded values carry.
type Aggregator struct {
	cfg       *store.Config
	market    interfaces.MarketData
	indicator interfaces.IndicatorSource
	headlines interfaces.HeadlineSource // optional, nil disables
	rng       *rand.Rand
}

// NewAggregator builds an aggregator. The randomness source is injected so
// tests can pin the sector choice.
func NewAggregator(cfg *store.Config, market interfaces.MarketData, indicator interfaces.IndicatorSource, headlines interfaces.HeadlineSource, rng *rand.Rand) *Aggregator {
	return &Aggregator{
		cfg:       cfg,
		market:    market,
		indicator: indicator,
		headlines: headlines,
		rng:       rng,
	}
}

// pickSector selects one {label, ticker} pair uniformly at random. Labels
// are sorted first so the same seed always yields the same pick.
func (a *Aggregator) pickSector() (label, ticker string) {
	labels := make([]string, 0, len(a.cfg.Sectors))
	for l := range a.cfg.Sectors {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	label = labels[a.rng.Intn(len(labels))]
	return label, a.cfg.Sectors[label]
}

// BuildPrompt assembles the generation prompt for one cycle.
func (a *Aggregator) BuildPrompt(ctx context.Context) types.Prompt {
	sector, ticker := a.pickSector()
	logger.Info(ctx, "Sector selected", "sector", sector, "ticker", ticker)

	quote := a.market.SectorInsight(ctx, ticker)
	quote.Sector = sector

	indicator := a.indicator.LatestValue(ctx, a.cfg.Indicator.SeriesID)

	indicatorLabel := a.cfg.Indicator.Label
	if indicatorLabel == "" {
		indicatorLabel = "US inflation rate"
	}
	indicatorText := indicator.Render()
	if indicator.Present {
		indicatorText += "%"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Summarize today's %s sector trends in one tweet. ", sector)
	fmt.Fprintf(&b, "The sector is currently %s ", quote.Insight())
	fmt.Fprintf(&b, "The latest %s is %s.", indicatorLabel, indicatorText)

	if lines := a.fetchHeadlines(ctx, ticker); len(lines) > 0 {
		fmt.Fprintf(&b, " Recent headlines: %s.", strings.Join(lines, "; "))
	}

	b.WriteString(" Keep it engaging and professional.")

	return types.Prompt{Sector: sector, Ticker: ticker, Text: b.String()}
}

// fetchHeadlines is best-effort prompt enrichment; failures are absorbed.
func (a *Aggregator) fetchHeadlines(ctx context.Context, ticker string) []string {
	if a.headlines == nil || !a.cfg.Headlines.Enabled {
		return nil
	}
	lines, err := a.headlines.Headlines(ctx, ticker, a.cfg.Headlines.Max)
	if err != nil {
		logger.Warn(ctx, "Headline fetch failed, continuing without", "ticker", ticker, "error", err)
		return nil
	}
	return lines
}
