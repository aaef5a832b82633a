package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	out string
	err error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return s.out, s.err
}

func TestWithFallbackPassesThroughSuccess(t *testing.T) {
	g := WithFallback(&stubGenerator{out: "Tech sector rallies on chip demand."})

	out, err := g.Generate(context.Background(), "prompt", 100)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "Tech sector rallies on chip demand." {
		t.Errorf("Expected generator output unchanged, got %q", out)
	}
}

func TestWithFallbackAbsorbsFailure(t *testing.T) {
	g := WithFallback(&stubGenerator{err: errors.New("rate limited")})

	out, err := g.Generate(context.Background(), "prompt", 100)
	if err != nil {
		t.Fatalf("Expected failure absorbed, got %v", err)
	}
	if !strings.HasPrefix(out, FallbackMarker) {
		t.Errorf("Expected fallback marker prefix, got %q", out)
	}
	if !strings.Contains(out, "rate limited") {
		t.Errorf("Expected cause embedded in fallback text, got %q", out)
	}
}
