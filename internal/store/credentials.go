package store

import (
	"fmt"
	"os"
)

// Credentials holds the secrets the external clients need. All platform
// credentials are required; provider keys are required per enabled provider.
type Credentials struct {
	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string
	FredAPIKey            string
	OpenAIAPIKey          string
}

// LoadCredentials reads secrets from the environment. A missing required
// credential is a fatal startup condition: there is no degraded mode for
// authentication.
func LoadCredentials(cfg *Config) (*Credentials, error) {
	creds := &Credentials{
		TwitterConsumerKey:    os.Getenv("TWITTER_CONSUMER_KEY"),
		TwitterConsumerSecret: os.Getenv("TWITTER_CONSUMER_SECRET"),
		TwitterAccessToken:    os.Getenv("TWITTER_ACCESS_TOKEN"),
		TwitterAccessSecret:   os.Getenv("TWITTER_ACCESS_SECRET"),
		FredAPIKey:            os.Getenv("FRED_API_KEY"),
		OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
	}

	required := map[string]string{
		"FRED_API_KEY": creds.FredAPIKey,
	}
	if cfg.Mode == "LIVE" {
		required["TWITTER_CONSUMER_KEY"] = creds.TwitterConsumerKey
		required["TWITTER_CONSUMER_SECRET"] = creds.TwitterConsumerSecret
		required["TWITTER_ACCESS_TOKEN"] = creds.TwitterAccessToken
		required["TWITTER_ACCESS_SECRET"] = creds.TwitterAccessSecret
	}
	if cfg.LLM.Provider == "OPENAI" {
		required["OPENAI_API_KEY"] = creds.OpenAIAPIKey
	}

	var missing []string
	for key, val := range required {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return creds, nil
}

// Masked returns a credential suitable for startup logging: only the last
// four characters are shown.
func Masked(val string) string {
	if len(val) <= 4 {
		return "***"
	}
	return "***" + val[len(val)-4:]
}
