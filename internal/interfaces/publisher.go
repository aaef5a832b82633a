package interfaces

import (
	"context"

	"histofin-bot/internal/types"
)

// Publisher is a thin, non-retrying wrapper over the social platform.
// Each call succeeds or fails once; the scheduler tick is the retry unit.
type Publisher interface {
	Post(ctx context.Context, text string) (string, error)
	Reply(ctx context.Context, text, targetID string) (string, error)
	Search(ctx context.Context, keyword string, limit int) ([]types.ReplyTarget, error)
}
