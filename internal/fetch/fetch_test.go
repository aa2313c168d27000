package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><main>hello world</main></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "hello world")
}

func TestURL_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-url", nil)
	require.Error(t, err)
}

func TestExtractMainText_PrefersSelectors(t *testing.T) {
	html := `<html><body>
		<nav>navigation junk</nav>
		<main>the real content</main>
		<footer>footer junk</footer>
	</body></html>`

	text, err := ExtractMainText(html, ProfilePageSelectors())
	require.NoError(t, err)
	assert.Equal(t, "the real content", text)
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	html := `<html><body><div>plain body text</div></body></html>`

	text, err := ExtractMainText(html, []string{".does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, "plain body text", text)
}

func TestExtractAll_ReturnsEachMatch(t *testing.T) {
	html := `<html><body>
		<div class="status__content">first post</div>
		<div class="status__content">second post</div>
		<div class="status__content">  </div>
	</body></html>`

	texts, err := ExtractAll(html, PlatformPostSelector(PlatformMastodon))
	require.NoError(t, err)
	assert.Equal(t, []string{"first post", "second post"}, texts)
}

func TestDetectPlatform(t *testing.T) {
	assert.Equal(t, PlatformNitter, DetectPlatform("https://nitter.net/alice"))
	assert.Equal(t, PlatformBluesky, DetectPlatform("https://bsky.app/profile/alice"))
	assert.Equal(t, PlatformMastodon, DetectPlatform("https://mastodon.social/@alice"))
	assert.Equal(t, PlatformUnknown, DetectPlatform("https://example.com/alice"))
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("tiny"))
	long := make([]byte, MinContentLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.False(t, ShouldUseBrowser(string(long)))
}
