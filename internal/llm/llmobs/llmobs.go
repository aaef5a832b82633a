package llmobs

import (
	"context"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/trace"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	generator interfaces.Generator
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(generator interfaces.Generator) interfaces.Generator {
	return &observableGenerator{generator: generator}
}

func (og *observableGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Skip(1) so the log reports the actual caller, not this wrapper
	logger.DebugSkip(ctx, 1, "Requesting text generation",
		"prompt_length", len(prompt),
		"max_tokens", maxTokens,
	)

	text, err := og.generator.Generate(ctx, prompt, maxTokens)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Text generation failed", err,
			"prompt_length", len(prompt),
		)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Text generated",
		"output_length", len(text),
	)
	return text, nil
}
