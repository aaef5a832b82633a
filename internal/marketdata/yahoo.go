package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"histofin-bot/internal/api"
	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/types"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Yahoo fetches one year of daily closes from the Yahoo Finance chart API.
// It never surfaces an error: empty series, malformed payloads and transport
// failures all degrade to an unavailable quote carrying the cause.
type Yahoo struct {
	client *api.Client
}

var _ interfaces.MarketData = (*Yahoo)(nil)

func NewYahoo(opts ...api.ClientOption) *Yahoo {
	base := []api.ClientOption{
		api.WithBaseURL(defaultBaseURL),
		api.WithTimeout(20 * time.Second),
	}
	return &Yahoo{client: api.NewClient(append(base, opts...)...)}
}

// chartResponse mirrors the fields we read from /v8/finance/chart.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// SectorInsight fetches a one-year daily close series for the ticker and
// derives current price, year-ago price and percent change.
func (y *Yahoo) SectorInsight(ctx context.Context, ticker string) types.SectorQuote {
	path := fmt.Sprintf("/v8/finance/chart/%s?range=1y&interval=1d", url.PathEscape(ticker))

	req := api.NewRequest("GET", path).WithContext(ctx)
	for k, v := range api.YahooFinanceHeaders() {
		req.WithHeader(k, v)
	}

	resp, err := y.client.DoWithRetry(req, nil)
	if err != nil {
		logger.Warn(ctx, "Market data fetch failed", "ticker", ticker, "error", err)
		return unavailable(ticker, "request failed")
	}

	var chart chartResponse
	if err := resp.ParseJSON(&chart); err != nil {
		logger.Warn(ctx, "Market data parse failed", "ticker", ticker, "error", err)
		return unavailable(ticker, "malformed response")
	}
	if chart.Chart.Error != nil {
		return unavailable(ticker, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return unavailable(ticker, "empty series")
	}

	quotes := chart.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return unavailable(ticker, "empty series")
	}

	first, last, ok := seriesEndpoints(quotes[0].Close)
	if !ok {
		return unavailable(ticker, "empty series")
	}

	return types.SectorQuote{
		Ticker:  ticker,
		Current: decimal.NewFromFloat(last),
		YearAgo: decimal.NewFromFloat(first),
	}
}

// seriesEndpoints returns the first and last non-null closes. Yahoo pads
// gaps with nulls, so both ends need scanning.
func seriesEndpoints(closes []*float64) (first, last float64, ok bool) {
	var firstSet, lastSet bool
	for _, c := range closes {
		if c == nil {
			continue
		}
		if !firstSet {
			first = *c
			firstSet = true
		}
		last = *c
		lastSet = true
	}
	return first, last, firstSet && lastSet
}

func unavailable(ticker, cause string) types.SectorQuote {
	return types.SectorQuote{Ticker: ticker, Unavailable: true, Cause: cause}
}
