package pubobs

import (
	"context"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/trace"
	"histofin-bot/internal/types"
)

// observablePublisher wraps a Publisher with observability (logging & tracing)
type observablePublisher struct {
	publisher interfaces.Publisher
}

// Compile-time interface check
var _ interfaces.Publisher = (*observablePublisher)(nil)

// Wrap wraps a publisher with observability middleware
func Wrap(publisher interfaces.Publisher) interfaces.Publisher {
	return &observablePublisher{publisher: publisher}
}

func (op *observablePublisher) Post(ctx context.Context, text string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "publisher.Post")
	defer span.End()

	id, err := op.publisher.Post(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Post failed", err, "length", len(text))
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Post succeeded", "post_id", id, "length", len(text))
	return id, nil
}

func (op *observablePublisher) Reply(ctx context.Context, text, targetID string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "publisher.Reply")
	defer span.End()

	id, err := op.publisher.Reply(ctx, text, targetID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Reply failed", err, "target_id", targetID)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Reply succeeded", "post_id", id, "target_id", targetID)
	return id, nil
}

func (op *observablePublisher) Search(ctx context.Context, keyword string, limit int) ([]types.ReplyTarget, error) {
	ctx, span := trace.StartSpan(ctx, "publisher.Search")
	defer span.End()

	targets, err := op.publisher.Search(ctx, keyword, limit)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Search failed", err, "keyword", keyword)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Search completed", "keyword", keyword, "results", len(targets))
	return targets, nil
}
