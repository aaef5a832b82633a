package interfaces

import "context"

// HeadlineSource fetches a bounded number of recent news headlines for a
// ticker. Purely additive prompt context: failures are absorbed upstream.
type HeadlineSource interface {
	Headlines(ctx context.Context, ticker string, max int) ([]string, error)
}
