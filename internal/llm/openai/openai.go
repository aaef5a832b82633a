package openai

import (
	"context"
	"errors"
	"strings"
	"time"

	"histofin-bot/internal/api"
	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/store"
	"histofin-bot/internal/trace"
)

const defaultBaseURL = "https://api.openai.com"

// Generator wraps a single chat-completions call. Model identity and output
// length come from config; each request is constructed fresh per cycle.
type Generator struct {
	cfg    *store.Config
	apiKey string
	client *api.Client
}

var _ interfaces.Generator = (*Generator)(nil)

func NewGenerator(cfg *store.Config, apiKey string, opts ...api.ClientOption) *Generator {
	base := []api.ClientOption{
		api.WithBaseURL(defaultBaseURL),
		api.WithTimeout(60 * time.Second),
	}
	return &Generator{
		cfg:    cfg,
		apiKey: apiKey,
		client: api.NewClient(append(base, opts...)...),
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	if g.apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}
	if maxTokens <= 0 {
		maxTokens = g.cfg.LLM.MaxTokens
	}

	body := map[string]any{
		"model": g.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": g.cfg.LLM.System},
			{"role": "user", "content": prompt},
		},
		"temperature": g.cfg.LLM.Temperature,
		"max_tokens":  maxTokens,
	}

	resp, err := g.client.POST(ctx, "/v1/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + g.apiKey,
	})
	if err != nil {
		return "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
