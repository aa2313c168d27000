package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/types"
)

const redditListingFixture = `{
	"data": {
		"children": [
			{"data": {"title": "First post", "selftext": "body text", "created_utc": 1700000000, "permalink": "/r/go/1", "score": 42, "num_comments": 7}},
			{"data": {"title": "Second post", "selftext": "", "created_utc": 1700000100, "permalink": "/r/go/2", "score": 3, "num_comments": 0}},
			{"data": {"title": "", "selftext": "", "created_utc": 1700000200, "permalink": "/r/go/3", "score": 1, "num_comments": 0}}
		]
	}
}`

func TestRedditConnector_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/alice/submitted.json", r.URL.Path)
		_, _ = w.Write([]byte(redditListingFixture))
	}))
	defer server.Close()

	c := NewRedditConnector(WithRedditBaseURL(server.URL))
	signals, err := c.Fetch(context.Background(), "alice", 10)
	require.NoError(t, err)

	// Empty posts are dropped.
	require.Len(t, signals, 2)
	assert.Equal(t, types.SourceReddit, signals[0].Source)
	assert.Equal(t, "First post\nbody text", signals[0].Text)
	assert.Equal(t, 42, signals[0].Engagement.Likes)
	assert.Equal(t, 7, signals[0].Engagement.Replies)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), signals[0].Timestamp)
	assert.Equal(t, server.URL+"/r/go/1", signals[0].URL)
}

func TestRedditConnector_UpstreamErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewRedditConnector(WithRedditBaseURL(server.URL))
	_, err := c.Fetch(context.Background(), "alice", 10)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	var unavailable *Unavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, types.SourceReddit, unavailable.Source)
}

func TestRedditConnector_MalformedBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	c := NewRedditConnector(WithRedditBaseURL(server.URL))
	_, err := c.Fetch(context.Background(), "alice", 10)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}

func TestRedditConnector_ExhaustedBudgetFailsFast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(redditListingFixture))
	}))
	defer server.Close()

	c := NewRedditConnector(
		WithRedditBaseURL(server.URL),
		WithRedditBudget(NewBudget(1, time.Hour)),
	)

	_, err := c.Fetch(context.Background(), "alice", 10)
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), "alice", 10)
	require.Error(t, err)

	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, types.SourceReddit, limited.Source)
	assert.Greater(t, limited.RetryAfter, time.Duration(0))
	assert.True(t, IsUnavailable(err))
}
