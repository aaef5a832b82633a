package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/dghubble/oauth1"

	"histofin-bot/internal/api"
	"histofin-bot/internal/interfaces"
	"histofin-bot/internal/logger"
	"histofin-bot/internal/types"
)

const defaultBaseURL = "https://api.twitter.com"

// Params holds the credentials and mode for the platform client.
type Params struct {
	Mode           string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Client is a thin, non-retrying wrapper over the X API v2. Each call
// succeeds or fails once; rate-limit recovery is left to the next scheduled
// tick. In DRY_RUN mode posts and replies are logged, not sent.
type Client struct {
	p      Params
	client *api.Client
	dryID  atomic.Int64
}

var _ interfaces.Publisher = (*Client)(nil)

// APIError is the typed failure surfaced by every publisher call.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter %s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Detail)
}

// New builds a client whose requests are signed with the OAuth1 user
// context. The signing transport is created once and reused for the life of
// the process.
func New(p Params, opts ...api.ClientOption) *Client {
	oaCfg := oauth1.NewConfig(p.ConsumerKey, p.ConsumerSecret)
	token := oauth1.NewToken(p.AccessToken, p.AccessSecret)
	httpClient := oaCfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	base := []api.ClientOption{
		api.WithBaseURL(defaultBaseURL),
		api.WithHTTPClient(httpClient),
	}
	return &Client{p: p, client: api.NewClient(append(base, opts...)...)}
}

// VerifyCredentials confirms the authenticated user at startup. A failure
// here is fatal: there is no degraded mode for authentication.
func (c *Client) VerifyCredentials(ctx context.Context) (string, error) {
	if c.p.Mode == "DRY_RUN" {
		return "dry-run", nil
	}

	resp, err := c.client.GET(ctx, "/2/users/me")
	if err != nil {
		return "", wrapErr("verify", err)
	}

	var r struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", wrapErr("verify", err)
	}
	if r.Data.Username == "" {
		return "", &APIError{Op: "verify", StatusCode: resp.StatusCode, Detail: "no user data received"}
	}
	return r.Data.Username, nil
}

type tweetRequest struct {
	Text  string `json:"text"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Post publishes a standalone status and returns its id.
func (c *Client) Post(ctx context.Context, text string) (string, error) {
	if c.p.Mode == "DRY_RUN" {
		id := fmt.Sprintf("dry-post-%d", c.dryID.Add(1))
		logger.Info(ctx, "DRY_RUN: would post status", "id", id, "text", text)
		return id, nil
	}
	return c.createTweet(ctx, "post", tweetRequest{Text: text})
}

// Reply publishes a reply to targetID and returns the reply's id.
func (c *Client) Reply(ctx context.Context, text, targetID string) (string, error) {
	if targetID == "" {
		return "", &APIError{Op: "reply", Detail: "empty target post id"}
	}
	if c.p.Mode == "DRY_RUN" {
		id := fmt.Sprintf("dry-reply-%d", c.dryID.Add(1))
		logger.Info(ctx, "DRY_RUN: would reply", "id", id, "target_id", targetID, "text", text)
		return id, nil
	}

	req := tweetRequest{Text: text}
	req.Reply = &struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	}{InReplyToTweetID: targetID}
	return c.createTweet(ctx, "reply", req)
}

func (c *Client) createTweet(ctx context.Context, op string, body tweetRequest) (string, error) {
	resp, err := c.client.POST(ctx, "/2/tweets", body)
	if err != nil {
		return "", wrapErr(op, err)
	}

	var r tweetResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", wrapErr(op, err)
	}
	if r.Data.ID == "" {
		return "", &APIError{Op: op, StatusCode: resp.StatusCode, Detail: "response missing tweet id"}
	}
	return r.Data.ID, nil
}

type searchResponse struct {
	Data []struct {
		ID       string `json:"id"`
		AuthorID string `json:"author_id"`
		Text     string `json:"text"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

// Search returns up to limit recent posts matching the keyword.
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]types.ReplyTarget, error) {
	if limit <= 0 {
		return nil, nil
	}

	// The recent-search endpoint rejects max_results below 10; request the
	// minimum page and trim client-side.
	maxResults := limit
	if maxResults < 10 {
		maxResults = 10
	}
	query := url.QueryEscape(keyword + " lang:en -is:retweet")
	path := fmt.Sprintf("/2/tweets/search/recent?query=%s&max_results=%d&tweet.fields=author_id&expansions=author_id&user.fields=username",
		query, maxResults)

	resp, err := c.client.GET(ctx, path)
	if err != nil {
		return nil, wrapErr("search", err)
	}

	var r searchResponse
	if err := resp.ParseJSON(&r); err != nil {
		return nil, wrapErr("search", err)
	}

	handles := make(map[string]string, len(r.Includes.Users))
	for _, u := range r.Includes.Users {
		handles[u.ID] = u.Username
	}

	targets := make([]types.ReplyTarget, 0, limit)
	for _, t := range r.Data {
		if len(targets) >= limit {
			break
		}
		targets = append(targets, types.ReplyTarget{
			ID:           t.ID,
			AuthorHandle: handles[t.AuthorID],
			Text:         t.Text,
		})
	}
	return targets, nil
}

// wrapErr converts transport-level failures into the typed publisher error,
// preserving the HTTP status when one is known.
func wrapErr(op string, err error) error {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return &APIError{Op: op, StatusCode: statusErr.StatusCode, Detail: statusErr.Body}
	}
	return &APIError{Op: op, Detail: err.Error()}
}
