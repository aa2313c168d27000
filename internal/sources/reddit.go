package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BAWSA3/brandos/internal/fetch"
	"github.com/BAWSA3/brandos/internal/types"
)

// DefaultRedditBaseURL is the public reddit endpoint.
const DefaultRedditBaseURL = "https://www.reddit.com"

// RedditConnector fetches a handle's public submissions via reddit's
// listing JSON endpoint.
type RedditConnector struct {
	baseURL string
	budget  *Budget
	timeout time.Duration
	opts    *fetch.Options
}

// RedditOption customizes a RedditConnector.
type RedditOption func(*RedditConnector)

// WithRedditBaseURL overrides the endpoint, mainly for tests.
func WithRedditBaseURL(base string) RedditOption {
	return func(c *RedditConnector) { c.baseURL = base }
}

// WithRedditBudget sets the request budget.
func WithRedditBudget(b *Budget) RedditOption {
	return func(c *RedditConnector) { c.budget = b }
}

// WithRedditTimeout sets the per-call timeout.
func WithRedditTimeout(d time.Duration) RedditOption {
	return func(c *RedditConnector) { c.timeout = d }
}

// NewRedditConnector creates a reddit connector with a default budget of
// 30 requests per minute.
func NewRedditConnector(options ...RedditOption) *RedditConnector {
	c := &RedditConnector{
		baseURL: DefaultRedditBaseURL,
		budget:  NewBudget(30, time.Minute),
		timeout: DefaultFetchTimeout,
		opts:    fetch.DefaultOptions(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Kind returns the source kind.
func (c *RedditConnector) Kind() types.SourceKind {
	return types.SourceReddit
}

// redditListing mirrors the subset of reddit's listing response we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch retrieves the handle's recent submissions.
func (c *RedditConnector) Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error) {
	guarded, cancel, err := guard(ctx, c.Kind(), c.budget, c.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	limit = normalizeLimit(limit)
	url := fmt.Sprintf("%s/user/%s/submitted.json?limit=%d", c.baseURL, handle, limit)

	result, err := fetch.URL(guarded, url, c.opts)
	if err != nil {
		return nil, asUnavailable(c.Kind(), err)
	}

	var listing redditListing
	if err := json.Unmarshal([]byte(result.HTML), &listing); err != nil {
		return nil, asUnavailable(c.Kind(), fmt.Errorf("malformed listing: %w", err))
	}

	signals := make([]types.RawSignal, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		text := post.Title
		if post.Selftext != "" {
			text += "\n" + post.Selftext
		}
		if text == "" {
			continue
		}
		signals = append(signals, types.RawSignal{
			Source:    c.Kind(),
			Handle:    handle,
			Timestamp: time.Unix(int64(post.CreatedUTC), 0).UTC(),
			Text:      text,
			URL:       c.baseURL + post.Permalink,
			Engagement: types.Engagement{
				Likes:   post.Score,
				Replies: post.NumComments,
			},
		})
		if len(signals) >= limit {
			break
		}
	}

	return signals, nil
}
