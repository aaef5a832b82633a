package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode     string `yaml:"mode"`
	Timezone string `yaml:"timezone"`

	Schedule struct {
		TickSeconds     int    `yaml:"tick_seconds"`
		PostTime        string `yaml:"post_time"`
		ReplyEveryHours int    `yaml:"reply_every_hours"`
	} `yaml:"schedule"`

	Sectors map[string]string `yaml:"sectors"` // label -> ticker

	Indicator struct {
		SeriesID string `yaml:"series_id"`
		Label    string `yaml:"label"`
	} `yaml:"indicator"`

	Headlines struct {
		Enabled bool `yaml:"enabled"`
		Max     int  `yaml:"max"`
	} `yaml:"headlines"`

	LLM struct {
		Provider    string  `yaml:"provider"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		System      string  `yaml:"system"`
	} `yaml:"llm"`

	Tweet struct {
		MaxLength int    `yaml:"max_length"`
		Hashtags  string `yaml:"hashtags"`
	} `yaml:"tweet"`

	Reply struct {
		Keywords   []string `yaml:"keywords"`
		PerKeyword int      `yaml:"per_keyword"`
		Template   string   `yaml:"template"`
		TrackSeen  bool     `yaml:"track_seen"`
		SeenCap    int      `yaml:"seen_cap"`
	} `yaml:"reply"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Sectors) == 0 {
		return errors.New("sectors cannot be empty")
	}
	if c.Indicator.SeriesID == "" {
		return errors.New("indicator.series_id cannot be empty")
	}
	if _, err := time.Parse("15:04", c.Schedule.PostTime); err != nil {
		return fmt.Errorf("schedule.post_time must be HH:MM, got '%s'", c.Schedule.PostTime)
	}
	if c.Schedule.ReplyEveryHours <= 0 {
		return fmt.Errorf("schedule.reply_every_hours must be positive, got %d", c.Schedule.ReplyEveryHours)
	}
	if c.Tweet.MaxLength < 40 {
		return fmt.Errorf("tweet.max_length too small to fit template, got %d", c.Tweet.MaxLength)
	}
	if c.Reply.PerKeyword <= 0 || c.Reply.PerKeyword > 10 {
		return fmt.Errorf("reply.per_keyword must be between 1-10, got %d", c.Reply.PerKeyword)
	}
	if c.LLM.Provider != "OPENAI" && c.LLM.Provider != "NOOP" {
		return fmt.Errorf("llm.provider must be 'OPENAI' or 'NOOP', got '%s'", c.LLM.Provider)
	}
	return nil
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// Defaults mirroring the bot's expected cadence
	if c.Schedule.TickSeconds == 0 {
		c.Schedule.TickSeconds = 60
	}
	if c.Schedule.PostTime == "" {
		c.Schedule.PostTime = "12:00"
	}
	if c.Schedule.ReplyEveryHours == 0 {
		c.Schedule.ReplyEveryHours = 3
	}
	if c.Tweet.MaxLength == 0 {
		c.Tweet.MaxLength = 280
	}
	if c.Reply.PerKeyword == 0 {
		c.Reply.PerKeyword = 3
	}
	if c.Reply.SeenCap == 0 {
		c.Reply.SeenCap = 512
	}
	if c.Headlines.Max == 0 {
		c.Headlines.Max = 3
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 280
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
