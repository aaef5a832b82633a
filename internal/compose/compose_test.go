package compose

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"histofin-bot/internal/llm"
	"histofin-bot/internal/store"
	"histofin-bot/internal/types"
)

type stubMarket struct {
	quote types.SectorQuote
}

func (m *stubMarket) SectorInsight(ctx context.Context, ticker string) types.SectorQuote {
	q := m.quote
	q.Ticker = ticker
	return q
}

type stubIndicator struct {
	value types.IndicatorValue
}

func (i *stubIndicator) LatestValue(ctx context.Context, seriesID string) types.IndicatorValue {
	v := i.value
	v.SeriesID = seriesID
	return v
}

type stubGenerator struct {
	out string
	err error
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.out == "" {
		return "Markets held steady today.", nil
	}
	return g.out, nil
}

func testConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Mode = "DRY_RUN"
	cfg.Sectors = map[string]string{"Tech": "XLK", "Energy": "XLE", "Finance": "XLF", "Healthcare": "XLV"}
	cfg.Indicator.SeriesID = "CPIAUCSL"
	cfg.Indicator.Label = "US inflation rate"
	cfg.Tweet.MaxLength = 280
	cfg.Tweet.Hashtags = "#StockMarket #Investing #Finance"
	cfg.LLM.MaxTokens = 280
	return cfg
}

func goodQuote() types.SectorQuote {
	return types.SectorQuote{
		Current: decimal.NewFromFloat(120.0),
		YearAgo: decimal.NewFromFloat(100.0),
	}
}

func TestBuildPromptDeterministicSector(t *testing.T) {
	cfg := testConfig()
	market := &stubMarket{quote: goodQuote()}
	indicator := &stubIndicator{value: types.IndicatorValue{Value: decimal.NewFromFloat(3.2), Present: true}}

	a := NewAggregator(cfg, market, indicator, nil, rand.New(rand.NewSource(7)))
	b := NewAggregator(cfg, market, indicator, nil, rand.New(rand.NewSource(7)))

	p1 := a.BuildPrompt(context.Background())
	p2 := b.BuildPrompt(context.Background())

	if p1.Sector != p2.Sector {
		t.Errorf("Expected identical sector picks for identical seeds, got %s vs %s", p1.Sector, p2.Sector)
	}
	if _, ok := cfg.Sectors[p1.Sector]; !ok {
		t.Errorf("Picked sector %s not in configured set", p1.Sector)
	}
}

func TestBuildPromptEmbedsData(t *testing.T) {
	cfg := testConfig()
	market := &stubMarket{quote: goodQuote()}
	indicator := &stubIndicator{value: types.IndicatorValue{Value: decimal.NewFromFloat(3.2), Present: true}}

	a := NewAggregator(cfg, market, indicator, nil, rand.New(rand.NewSource(1)))
	p := a.BuildPrompt(context.Background())

	if !strings.Contains(p.Text, "+20.00%") {
		t.Errorf("Expected percent change in prompt, got: %s", p.Text)
	}
	if !strings.Contains(p.Text, "3.2%") {
		t.Errorf("Expected indicator value in prompt, got: %s", p.Text)
	}
	if !strings.Contains(p.Text, p.Sector) {
		t.Errorf("Expected sector name in prompt, got: %s", p.Text)
	}
}

func TestBuildPromptBothProvidersDegraded(t *testing.T) {
	cfg := testConfig()
	market := &stubMarket{quote: types.SectorQuote{Unavailable: true, Cause: "request failed"}}
	indicator := &stubIndicator{value: types.IndicatorValue{}}

	a := NewAggregator(cfg, market, indicator, nil, rand.New(rand.NewSource(3)))

	// Two independent random picks, both fully degraded: must never panic
	// and must still produce a valid prompt carrying the placeholders.
	for i := 0; i < 2; i++ {
		p := a.BuildPrompt(context.Background())
		if p.Text == "" {
			t.Fatal("Expected non-empty prompt from degraded providers")
		}
		if !strings.Contains(p.Text, "Could not retrieve data") {
			t.Errorf("Expected market placeholder in prompt, got: %s", p.Text)
		}
		if !strings.Contains(p.Text, types.IndicatorUnavailable) {
			t.Errorf("Expected indicator placeholder in prompt, got: %s", p.Text)
		}
	}
}

func TestComposeTemplate(t *testing.T) {
	cfg := testConfig()
	a := NewAggregator(cfg, &stubMarket{quote: goodQuote()},
		&stubIndicator{value: types.IndicatorValue{Value: decimal.NewFromFloat(3.2), Present: true}},
		nil, rand.New(rand.NewSource(1)))
	c := NewComposer(cfg, a, &stubGenerator{out: "Tech keeps climbing."})

	draft, err := c.Compose(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(draft.Body, "📊 "+draft.Sector+" Sector Update:\n") {
		t.Errorf("Expected sector header, got: %s", draft.Body)
	}
	if !strings.Contains(draft.Body, "Tech keeps climbing.") {
		t.Errorf("Expected generated commentary, got: %s", draft.Body)
	}
	if !strings.HasSuffix(draft.Body, "\n\n#StockMarket #Investing #Finance") {
		t.Errorf("Expected hashtag suffix, got: %s", draft.Body)
	}
}

func TestComposeClampsLongBody(t *testing.T) {
	cfg := testConfig()
	a := NewAggregator(cfg, &stubMarket{quote: goodQuote()},
		&stubIndicator{value: types.IndicatorValue{Value: decimal.NewFromFloat(3.2), Present: true}},
		nil, rand.New(rand.NewSource(1)))
	c := NewComposer(cfg, a, &stubGenerator{out: strings.Repeat("markets went up and up ", 40)})

	draft, err := c.Compose(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := len([]rune(draft.Body)); got > cfg.Tweet.MaxLength {
		t.Errorf("Expected body within %d chars, got %d", cfg.Tweet.MaxLength, got)
	}
	// Truncation must never eat the header or the hashtags.
	if !strings.HasPrefix(draft.Body, "📊 "+draft.Sector+" Sector Update:\n") {
		t.Errorf("Header lost after truncation: %s", draft.Body)
	}
	if !strings.HasSuffix(draft.Body, "#StockMarket #Investing #Finance") {
		t.Errorf("Hashtags lost after truncation: %s", draft.Body)
	}
}

func TestComposeGeneratorFailureFallsBack(t *testing.T) {
	cfg := testConfig()
	a := NewAggregator(cfg, &stubMarket{quote: goodQuote()},
		&stubIndicator{value: types.IndicatorValue{Value: decimal.NewFromFloat(3.2), Present: true}},
		nil, rand.New(rand.NewSource(1)))

	gen := llm.WithFallback(&stubGenerator{err: errors.New("quota exhausted")})
	c := NewComposer(cfg, a, gen)

	draft, err := c.Compose(context.Background())
	if err != nil {
		t.Fatalf("Expected fallback to absorb generation failure, got %v", err)
	}
	if !strings.Contains(draft.Body, llm.FallbackMarker) {
		t.Errorf("Expected fallback marker in body, got: %s", draft.Body)
	}
	if got := len([]rune(draft.Body)); got > cfg.Tweet.MaxLength {
		t.Errorf("Fallback body exceeds limit: %d", got)
	}
	if draft.Body == "" {
		t.Error("Expected non-empty degraded post")
	}
}
