package interfaces

import (
	"context"

	"histofin-bot/internal/types"
)

// IndicatorSource fetches the latest observation of a macroeconomic series.
// Missing or malformed data degrades to an absent value, never an error.
type IndicatorSource interface {
	LatestValue(ctx context.Context, seriesID string) types.IndicatorValue
}
