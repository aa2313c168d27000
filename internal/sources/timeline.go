package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BAWSA3/brandos/internal/fetch"
	"github.com/BAWSA3/brandos/internal/types"
)

// minProfileTextLen is the shortest main-text extraction worth keeping
// as a fallback signal; anything shorter is navigation residue.
const minProfileTextLen = 40

// TimelineConnector scrapes a handle's public timeline from a profile
// page or mirror (nitter, mastodon, bluesky).
type TimelineConnector struct {
	baseURL    string
	budget     *Budget
	timeout    time.Duration
	opts       *fetch.Options
	useBrowser bool
	logger     *zap.Logger
}

// TimelineOption customizes a TimelineConnector.
type TimelineOption func(*TimelineConnector)

// WithTimelineBudget sets the request budget.
func WithTimelineBudget(b *Budget) TimelineOption {
	return func(c *TimelineConnector) { c.budget = b }
}

// WithTimelineTimeout sets the per-call timeout.
func WithTimelineTimeout(d time.Duration) TimelineOption {
	return func(c *TimelineConnector) { c.timeout = d }
}

// WithBrowserFallback enables headless rendering for script-heavy pages.
func WithBrowserFallback(logger *zap.Logger) TimelineOption {
	return func(c *TimelineConnector) {
		c.useBrowser = true
		c.logger = logger
	}
}

// NewTimelineConnector creates a timeline connector rooted at baseURL,
// e.g. "https://nitter.net" or "https://mastodon.social".
func NewTimelineConnector(baseURL string, options ...TimelineOption) *TimelineConnector {
	c := &TimelineConnector{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		budget:  NewBudget(15, time.Minute),
		timeout: DefaultFetchTimeout,
		opts:    fetch.DefaultOptions(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Kind returns the source kind.
func (c *TimelineConnector) Kind() types.SourceKind {
	return types.SourceTimeline
}

// Fetch scrapes the handle's timeline page and returns one signal per
// post, in page order. Scraped posts carry no machine-readable
// timestamp, so fetch order stands in for recency within this source.
func (c *TimelineConnector) Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error) {
	guarded, cancel, err := guard(ctx, c.Kind(), c.budget, c.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	limit = normalizeLimit(limit)
	pageURL := c.profileURL(handle)
	platform := fetch.DetectPlatform(pageURL)

	result, err := fetch.URL(guarded, pageURL, c.opts)
	if err != nil {
		return nil, asUnavailable(c.Kind(), err)
	}
	html := result.HTML

	posts, err := fetch.ExtractAll(html, fetch.PlatformPostSelector(platform))
	if err != nil {
		return nil, asUnavailable(c.Kind(), err)
	}

	// Script-rendered timelines come back empty over plain HTTP.
	if len(posts) == 0 && c.useBrowser {
		rendered, berr := fetch.WithBrowser(guarded, pageURL, c.timeout, c.logger)
		if berr != nil {
			return nil, asUnavailable(c.Kind(), berr)
		}
		html = rendered
		posts, err = fetch.ExtractAll(html, fetch.PlatformPostSelector(platform))
		if err != nil {
			return nil, asUnavailable(c.Kind(), err)
		}
	}

	// Profiles without per-post markup still carry bio and pinned
	// content; extract the page's main text as a single signal before
	// giving up.
	if len(posts) == 0 {
		text, terr := fetch.ExtractMainText(html, fetch.ProfilePageSelectors(), fetch.PlatformNoiseSelectors(platform)...)
		if terr != nil || len(text) < minProfileTextLen {
			return nil, asUnavailable(c.Kind(), fmt.Errorf("no posts found at %s", pageURL))
		}
		posts = []string{text}
	}

	if len(posts) > limit {
		posts = posts[:limit]
	}

	signals := make([]types.RawSignal, 0, len(posts))
	for _, post := range posts {
		signals = append(signals, types.RawSignal{
			Source: c.Kind(),
			Handle: handle,
			Text:   post,
			URL:    pageURL,
		})
	}

	return signals, nil
}

func (c *TimelineConnector) profileURL(handle types.Handle) string {
	switch fetch.DetectPlatform(c.baseURL + "/") {
	case fetch.PlatformMastodon:
		return fmt.Sprintf("%s/@%s", c.baseURL, handle)
	case fetch.PlatformBluesky:
		return fmt.Sprintf("%s/profile/%s", c.baseURL, handle)
	default:
		return fmt.Sprintf("%s/%s", c.baseURL, handle)
	}
}
