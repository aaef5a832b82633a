package interfaces

import "context"

// Generator turns a natural-language prompt into generated commentary text.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}
