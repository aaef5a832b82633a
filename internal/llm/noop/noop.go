package noop

import (
	"context"

	"histofin-bot/internal/logger"
)

// NoopGenerator is a fallback generator used when no LLM is configured.
// It echoes the prompt's raw facts so dry runs still produce a post.
type NoopGenerator struct{}

// NewNoopGenerator returns a generator that never calls an external service
func NewNoopGenerator() *NoopGenerator {
	return &NoopGenerator{}
}

// Generate implements the Generator interface. It returns the prompt itself
// so the composed post carries the aggregated data verbatim.
func (g *NoopGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	logger.Debug(ctx, "Noop generator called - echoing prompt")
	return prompt, nil
}
