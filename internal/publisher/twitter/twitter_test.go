package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"histofin-bot/internal/api"
)

func liveClient(baseURL string) *Client {
	return New(Params{
		Mode:           "LIVE",
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		AccessToken:    "at",
		AccessSecret:   "as",
	}, api.WithBaseURL(baseURL))
}

func TestDryRunPostReturnsFakeIDs(t *testing.T) {
	c := New(Params{Mode: "DRY_RUN"})
	ctx := context.Background()

	id1, err := c.Post(ctx, "first status")
	if err != nil {
		t.Fatalf("Expected no error in dry run, got %v", err)
	}
	id2, err := c.Post(ctx, "second status")
	if err != nil {
		t.Fatalf("Expected no error in dry run, got %v", err)
	}

	if id1 != "dry-post-1" || id2 != "dry-post-2" {
		t.Errorf("Expected sequential dry ids, got %s and %s", id1, id2)
	}
}

func TestDryRunReplyRequiresTarget(t *testing.T) {
	c := New(Params{Mode: "DRY_RUN"})

	if _, err := c.Reply(context.Background(), "text", ""); err == nil {
		t.Error("Expected error for empty target id")
	}

	id, err := c.Reply(context.Background(), "text", "12345")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(id, "dry-reply-") {
		t.Errorf("Expected dry-reply id, got %s", id)
	}
}

func TestDryRunVerifyCredentials(t *testing.T) {
	c := New(Params{Mode: "DRY_RUN"})

	user, err := c.VerifyCredentials(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user != "dry-run" {
		t.Errorf("Expected dry-run user, got %s", user)
	}
}

func TestPostSendsTweetAndParsesID(t *testing.T) {
	var gotBody tweetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" || r.Method != http.MethodPost {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}
		w.Write([]byte(`{"data": {"id": "1900000000000000001"}}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	id, err := c.Post(context.Background(), "Market update")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id != "1900000000000000001" {
		t.Errorf("Expected tweet id from response, got %s", id)
	}
	if gotBody.Text != "Market update" {
		t.Errorf("Expected request text 'Market update', got %q", gotBody.Text)
	}
	if gotBody.Reply != nil {
		t.Error("Expected no reply field on a standalone post")
	}
}

func TestReplySetsInReplyToField(t *testing.T) {
	var gotBody tweetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"data": {"id": "1900000000000000002"}}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	if _, err := c.Reply(context.Background(), "Thanks for sharing!", "777"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotBody.Reply == nil || gotBody.Reply.InReplyToTweetID != "777" {
		t.Errorf("Expected in_reply_to_tweet_id 777, got %+v", gotBody.Reply)
	}
}

func TestPostSurfacesTypedErrorOnRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "You are not permitted to perform this action."}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	_, err := c.Post(context.Background(), "Market update")
	if err == nil {
		t.Fatal("Expected error on HTTP 403")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Op != "post" {
		t.Errorf("Expected op 'post', got %s", apiErr.Op)
	}
}

func TestSearchMapsAuthorHandles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets/search/recent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("max_results") != "10" {
			t.Errorf("Expected max_results 10, got %s", q.Get("max_results"))
		}
		if !strings.Contains(q.Get("query"), "stock market") {
			t.Errorf("Expected keyword in query, got %s", q.Get("query"))
		}
		w.Write([]byte(`{
			"data": [
				{"id": "101", "author_id": "u1", "text": "stock market looks wild"},
				{"id": "102", "author_id": "u2", "text": "stock market is calm"},
				{"id": "103", "author_id": "u1", "text": "more stock market talk"},
				{"id": "104", "author_id": "u3", "text": "stock market again"}
			],
			"includes": {"users": [
				{"id": "u1", "username": "trader_anna"},
				{"id": "u2", "username": "macro_bob"}
			]}
		}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	targets, err := c.Search(context.Background(), "stock market", 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(targets) != 3 {
		t.Fatalf("Expected results trimmed to 3, got %d", len(targets))
	}
	if targets[0].ID != "101" || targets[0].AuthorHandle != "trader_anna" {
		t.Errorf("Unexpected first target: %+v", targets[0])
	}
	if targets[1].AuthorHandle != "macro_bob" {
		t.Errorf("Expected handle macro_bob, got %s", targets[1].AuthorHandle)
	}
}

func TestSearchEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta": {"result_count": 0}}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	targets, err := c.Search(context.Background(), "obscure keyword", 3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("Expected no targets, got %d", len(targets))
	}
}

func TestSearchZeroLimit(t *testing.T) {
	c := New(Params{Mode: "LIVE"})
	targets, err := c.Search(context.Background(), "anything", 0)
	if err != nil || targets != nil {
		t.Errorf("Expected nil, nil for zero limit, got %v, %v", targets, err)
	}
}

func TestVerifyCredentialsParsesUsername(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/users/me" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": {"id": "42", "name": "HistoFin", "username": "histofin"}}`))
	}))
	defer server.Close()

	c := liveClient(server.URL)
	user, err := c.VerifyCredentials(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user != "histofin" {
		t.Errorf("Expected username histofin, got %s", user)
	}
}
