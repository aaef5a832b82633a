package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"histofin-bot/internal/compose"
	"histofin-bot/internal/headlines"
	"histofin-bot/internal/indicators"
	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/llm"
	"histofin-bot/internal/llm/llmobs"
	"histofin-bot/internal/llm/noop"
	"histofin-bot/internal/llm/openai"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/marketdata"
	"histofin-bot/internal/publisher/pubobs"
	"histofin-bot/internal/publisher/twitter"
	"histofin-bot/internal/reply"
	"histofin-bot/internal/sched"
	"histofin-bot/internal/store"
	"histofin-bot/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes env, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// loadCredentials reads required secrets; absence of any is fatal
func loadCredentials(ctx context.Context, cfg *store.Config) (*store.Credentials, error) {
	creds, err := store.LoadCredentials(cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Credential loading failed", err)
		return nil, err
	}
	logger.Info(ctx, "Credentials loaded",
		"twitter_consumer_key", store.Masked(creds.TwitterConsumerKey),
		"fred_api_key", store.Masked(creds.FredAPIKey),
	)
	return creds, nil
}

// initializePublisher builds the platform client, verifies credentials once
// at startup and wraps the result with observability middleware
func initializePublisher(ctx context.Context, cfg *store.Config, creds *store.Credentials) (interfaces.Publisher, error) {
	client := twitter.New(twitter.Params{
		Mode:           cfg.Mode,
		ConsumerKey:    creds.TwitterConsumerKey,
		ConsumerSecret: creds.TwitterConsumerSecret,
		AccessToken:    creds.TwitterAccessToken,
		AccessSecret:   creds.TwitterAccessSecret,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - posts and replies will be simulated")
	}

	username, err := client.VerifyCredentials(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Platform authentication failed", err)
		return nil, err
	}
	logger.Info(ctx, "Platform authentication successful", "username", username)

	return pubobs.Wrap(client), nil
}

// initializeGenerator builds the text generator for the configured provider.
// The fallback decorator goes on last so a generation failure degrades the
// post instead of failing the cycle.
func initializeGenerator(cfg *store.Config, creds *store.Credentials) interfaces.Generator {
	var generator interfaces.Generator

	switch cfg.LLM.Provider {
	case "OPENAI":
		generator = openai.NewGenerator(cfg, creds.OpenAIAPIKey)
	default:
		generator = noop.NewNoopGenerator()
		logger.Warn(context.Background(), "No LLM provider configured - using Noop generator")
	}

	return llm.WithFallback(llmobs.Wrap(generator))
}

// buildScheduler wires the content pipeline and reply engine into the static
// schedule table: one daily post entry, one recurring reply entry.
func buildScheduler(cfg *store.Config, creds *store.Credentials, publisher interfaces.Publisher) *sched.Scheduler {
	market := marketdata.NewYahoo()
	indicator := indicators.NewFRED(creds.FredAPIKey)

	var headlineSource interfaces.HeadlineSource
	if cfg.Headlines.Enabled {
		headlineSource = headlines.NewScraper(20 * time.Second)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	aggregator := compose.NewAggregator(cfg, market, indicator, headlineSource, rng)
	composer := compose.NewComposer(cfg, aggregator, initializeGenerator(cfg, creds))
	replyEngine := reply.NewEngine(cfg, publisher)

	scheduler := sched.New(time.Duration(cfg.Schedule.TickSeconds) * time.Second)

	dailyRule, err := sched.DailyAt(cfg.Schedule.PostTime, cfg.Location())
	if err != nil {
		// Unreachable after config validation; keep the loop alive anyway.
		dailyRule = sched.Every(24 * time.Hour)
	}

	scheduler.Add("daily-post", dailyRule, func(ctx context.Context) error {
		draft, err := composer.Compose(ctx)
		if err != nil {
			return err
		}
		postID, err := publisher.Post(ctx, draft.Body)
		if err != nil {
			return err
		}
		logger.Post(ctx, draft.Sector, postID, len([]rune(draft.Body)))
		return nil
	})

	scheduler.Add("auto-reply",
		sched.Every(time.Duration(cfg.Schedule.ReplyEveryHours)*time.Hour),
		replyEngine.Run,
	)

	return scheduler
}

// shutdownSystem flushes the tracer
func shutdownSystem(ctx context.Context) {
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Tracer shutdown failed: %v\n", err)
	}
}
