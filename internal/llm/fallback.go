package llm

import (
	"context"
	"fmt"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
)

// FallbackMarker prefixes generated text when the upstream model failed.
// A degraded post is preferable to a crashed cycle.
const FallbackMarker = "[market update unavailable"

// fallbackGenerator decorates a Generator so it never returns an error:
// any failure becomes a clearly marked fallback string embedding the cause.
type fallbackGenerator struct {
	inner interfaces.Generator
}

var _ interfaces.Generator = (*fallbackGenerator)(nil)

// WithFallback wraps a generator with failure absorption
func WithFallback(inner interfaces.Generator) interfaces.Generator {
	return &fallbackGenerator{inner: inner}
}

func (f *fallbackGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	out, err := f.inner.Generate(ctx, prompt, maxTokens)
	if err != nil {
		logger.ErrorWithErr(ctx, "Text generation failed, using fallback", err)
		return fmt.Sprintf("%s: %v]", FallbackMarker, err), nil
	}
	return out, nil
}
