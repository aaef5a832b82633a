package interfaces

import (
	"context"

	"histofin-bot/internal/types"
)

// MarketData fetches a one-year price view for a ticker. Implementations
// never return an error: any failure degrades to an unavailable quote
// carrying the cause, so the pipeline keeps moving.
type MarketData interface {
	SectorInsight(ctx context.Context, ticker string) types.SectorQuote
}
