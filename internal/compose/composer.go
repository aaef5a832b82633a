package compose

import (
	"context"
	"fmt"

	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/store"
	"histofin-bot/internal/types"
)

// Composer wraps the aggregated prompt and generated commentary inside the
// fixed post template and clamps the result to the platform limit.
type Composer struct {
	cfg *store.Config
	agg *Aggregator
	gen interfaces.Generator
}

func NewComposer(cfg *store.Config, agg *Aggregator, gen interfaces.Generator) *Composer {
	return &Composer{cfg: cfg, agg: agg, gen: gen}
}

// Compose produces one cycle's post: header naming the sector, generated
// body, blank line, fixed hashtag suffix. Only the body is ever truncated.
func (c *Composer) Compose(ctx context.Context) (types.PostDraft, error) {
	prompt := c.agg.BuildPrompt(ctx)

	body, err := c.gen.Generate(ctx, prompt.Text, c.cfg.LLM.MaxTokens)
	if err != nil {
		// Only reachable with an unwrapped generator; callers normally
		// inject one decorated by llm.WithFallback.
		return types.PostDraft{}, fmt.Errorf("generate commentary: %w", err)
	}

	header := fmt.Sprintf("📊 %s Sector Update:", prompt.Sector)
	text := c.render(header, body)

	logger.Debug(ctx, "Post composed", "sector", prompt.Sector, "length", len([]rune(text)))
	return types.PostDraft{Sector: prompt.Sector, Body: text}, nil
}

// render assembles header + body + hashtags, truncating the body rune-safely
// so the final text never exceeds the platform limit while header and
// hashtags stay intact.
func (c *Composer) render(header, body string) string {
	hashtags := c.cfg.Tweet.Hashtags
	limit := c.cfg.Tweet.MaxLength

	assemble := func(b string) string {
		if hashtags == "" {
			return header + "\n" + b
		}
		return header + "\n" + b + "\n\n" + hashtags
	}

	full := assemble(body)
	if len([]rune(full)) <= limit {
		return full
	}

	overhead := len([]rune(assemble("")))
	budget := limit - overhead
	if budget < 1 {
		// Header plus hashtags alone overflow; config validation keeps the
		// limit large enough that this only happens with an empty body slot.
		return assemble("")
	}

	runes := []rune(body)
	truncated := string(runes[:budget-1]) + "…"
	return assemble(truncated)
}
