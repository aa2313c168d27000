package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/BAWSA3/brandos/internal/types"
)

// VideoConnector gathers a handle's recent uploads through the YouTube
// Data API.
type VideoConnector struct {
	svc     *youtube.Service
	budget  *Budget
	timeout time.Duration
}

// NewVideoConnector creates a video connector.
func NewVideoConnector(ctx context.Context, apiKey string) (*VideoConnector, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &VideoConnector{
		svc:     svc,
		budget:  NewBudget(10, time.Minute),
		timeout: DefaultFetchTimeout,
	}, nil
}

// Kind returns the source kind.
func (c *VideoConnector) Kind() types.SourceKind {
	return types.SourceVideo
}

// Fetch searches recent videos for the handle and attaches view counts
// from a batched statistics lookup.
func (c *VideoConnector) Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error) {
	guarded, cancel, err := guard(ctx, c.Kind(), c.budget, c.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	limit = normalizeLimit(limit)
	search, err := c.svc.Search.List([]string{"snippet"}).
		Context(guarded).
		Q(string(handle)).
		Type("video").
		Order("date").
		MaxResults(int64(limit)).
		Do()
	if err != nil {
		return nil, asUnavailable(c.Kind(), err)
	}

	var ids []string
	for _, item := range search.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	if len(ids) == 0 {
		return nil, asUnavailable(c.Kind(), fmt.Errorf("no videos for %q", handle))
	}

	views := map[string]int{}
	stats, err := c.svc.Videos.List([]string{"statistics"}).
		Context(guarded).
		Id(strings.Join(ids, ",")).
		Do()
	if err == nil {
		for _, v := range stats.Items {
			if v.Statistics != nil {
				views[v.Id] = int(v.Statistics.ViewCount)
			}
		}
	}

	signals := make([]types.RawSignal, 0, len(search.Items))
	for _, item := range search.Items {
		if item.Snippet == nil || item.Id == nil {
			continue
		}
		text := item.Snippet.Title
		if item.Snippet.Description != "" {
			text += "\n" + item.Snippet.Description
		}
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		signals = append(signals, types.RawSignal{
			Source:    c.Kind(),
			Handle:    handle,
			Timestamp: published.UTC(),
			Text:      text,
			URL:       "https://www.youtube.com/watch?v=" + item.Id.VideoId,
			Engagement: types.Engagement{
				Views: views[item.Id.VideoId],
			},
		})
	}

	return signals, nil
}
