package indicators

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

const defaultBaseURL = "https://api.stlouisfed.org"

// FRED fetches the latest observation of a macroeconomic series from the
// St. Louis Fed observations endpoint. Any failure degrades to an absent
// value; the caller substitutes a placeholder in rendered text.
type FRED struct {
	client *api.Client
	apiKey string
}

var _ interfaces.IndicatorSource = (*FRED)(nil)

func NewFRED(apiKey string, opts ...api.ClientOption) *FRED {
	base := []api.ClientOption{
		api.WithBaseURL(defaultBaseURL),
		api.WithTimeout(15 * time.Second),
	}
	return &FRED{
		client: api.NewClient(append(base, opts...)...),
		apiKey: apiKey,
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// LatestValue returns the most recent observation of the series, or an
// absent value when the response lacks observations or the value does not
// parse. FRED reports gaps as ".", which counts as absent.
func (f *FRED) LatestValue(ctx context.Context, seriesID string) types.IndicatorValue {
	absent := types.IndicatorValue{SeriesID: seriesID}

	path := fmt.Sprintf("/fred/series/observations?series_id=%s&api_key=%s&file_type=json",
		url.QueryEscape(seriesID), url.QueryEscape(f.apiKey))

	resp, err := f.client.GET(ctx, path)
	if err != nil {
		logger.Warn(ctx, "Indicator fetch failed", "series_id", seriesID, "error", err)
		return absent
	}

	var payload observationsResponse
	if err := resp.ParseJSON(&payload); err != nil {
		logger.Warn(ctx, "Indicator parse failed", "series_id", seriesID, "error", err)
		return absent
	}
	if len(payload.Observations) == 0 {
		logger.Warn(ctx, "Indicator response has no observations", "series_id", seriesID)
		return absent
	}

	latest := payload.Observations[len(payload.Observations)-1]
	value, err := decimal.NewFromString(latest.Value)
	if err != nil {
		logger.Warn(ctx, "Indicator value not numeric", "series_id", seriesID, "value", latest.Value)
		return absent
	}

	return types.IndicatorValue{
		SeriesID: seriesID,
		Value:    value,
		AsOf:     latest.Date,
		Present:  true,
	}
}
