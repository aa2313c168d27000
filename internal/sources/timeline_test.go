package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/types"
)

const timelineFixture = `<html><body>
	<article><p>hello from my timeline</p></article>
	<article><p>shipping a new release today</p></article>
</body></html>`

func TestTimelineConnector_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/alice", r.URL.Path)
		_, _ = w.Write([]byte(timelineFixture))
	}))
	defer server.Close()

	c := NewTimelineConnector(server.URL)
	signals, err := c.Fetch(context.Background(), "alice", 10)
	require.NoError(t, err)

	require.Len(t, signals, 2)
	assert.Equal(t, types.SourceTimeline, signals[0].Source)
	assert.Equal(t, "hello from my timeline", signals[0].Text)
	assert.Equal(t, types.Handle("alice"), signals[0].Handle)
}

func TestTimelineConnector_LimitCapsPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(timelineFixture))
	}))
	defer server.Close()

	c := NewTimelineConnector(server.URL)
	signals, err := c.Fetch(context.Background(), "alice", 1)
	require.NoError(t, err)
	assert.Len(t, signals, 1)
}

func TestTimelineConnector_FallsBackToProfileText(t *testing.T) {
	page := `<html><body>
	<nav>home explore notifications</nav>
	<main>Alice builds developer tools and writes about distributed systems,
	observability, and the craft of shipping reliable software.</main>
	</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	c := NewTimelineConnector(server.URL)
	signals, err := c.Fetch(context.Background(), "alice", 10)
	require.NoError(t, err)

	require.Len(t, signals, 1)
	assert.Contains(t, signals[0].Text, "distributed systems")
	assert.NotContains(t, signals[0].Text, "notifications")
}

func TestTimelineConnector_EmptyPageIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><div>nothing here</div></body></html>"))
	}))
	defer server.Close()

	c := NewTimelineConnector(server.URL)
	_, err := c.Fetch(context.Background(), "alice", 10)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))
}
