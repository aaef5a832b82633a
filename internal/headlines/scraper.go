package headlines

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
)

// Scraper pulls recent news headlines for a ticker from the Yahoo Finance
// quote page. Headlines are prompt garnish only: callers absorb failures
// and carry on without them.
type Scraper struct {
	baseURL string
	timeout time.Duration
}

var _ interfaces.HeadlineSource = (*Scraper)(nil)

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		baseURL: "https://finance.yahoo.com",
		timeout: timeout,
	}
}

// Headlines scrapes up to max headline titles for the ticker's news page.
func (s *Scraper) Headlines(ctx context.Context, ticker string, max int) ([]string, error) {
	titles := []string{}
	seen := map[string]bool{}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnHTML(".stream-item a", func(e *colly.HTMLElement) {
		if len(titles) >= max {
			return
		}
		title := strings.TrimSpace(e.Text)
		if title == "" || seen[title] {
			return
		}
		seen[title] = true
		titles = append(titles, title)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Headline scrape error", "ticker", ticker, "url", r.Request.URL.String(), "error", err)
	})

	pageURL := fmt.Sprintf("%s/quote/%s/news", s.baseURL, ticker)
	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", pageURL, err)
	}
	c.Wait()

	logger.Debug(ctx, "Headlines scraped", "ticker", ticker, "count", len(titles))
	return titles, nil
}
