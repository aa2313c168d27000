package sources

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/BAWSA3/brandos/internal/types"
)

// SearchConnector gathers web mentions of a handle through the Google
// Custom Search API.
type SearchConnector struct {
	svc     *customsearch.Service
	cx      string
	budget  *Budget
	timeout time.Duration
}

// NewSearchConnector creates a search connector. apiKey and cx follow the
// Custom Search API conventions.
func NewSearchConnector(ctx context.Context, apiKey, cx string) (*SearchConnector, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &SearchConnector{
		svc:     svc,
		cx:      cx,
		budget:  NewBudget(20, time.Minute),
		timeout: DefaultFetchTimeout,
	}, nil
}

// Kind returns the source kind.
func (c *SearchConnector) Kind() types.SourceKind {
	return types.SourceWebSearch
}

// Fetch runs a small set of queries about the handle and converts result
// titles and snippets into signals. Search results carry no reliable
// publish date, so their timestamps stay zero and they rank on
// engagement and source priority alone.
func (c *SearchConnector) Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error) {
	guarded, cancel, err := guard(ctx, c.Kind(), c.budget, c.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	limit = normalizeLimit(limit)
	queries := []string{
		fmt.Sprintf("%q social media", string(handle)),
		fmt.Sprintf("%q interview OR profile", string(handle)),
	}

	var signals []types.RawSignal
	var lastErr error
	for _, q := range queries {
		if len(signals) >= limit {
			break
		}
		resp, err := c.svc.Cse.List().Context(guarded).Cx(c.cx).Q(q).Num(10).Do()
		if err != nil {
			lastErr = err
			continue
		}
		for _, item := range resp.Items {
			text := item.Title
			if item.Snippet != "" {
				text += "\n" + item.Snippet
			}
			if text == "" {
				continue
			}
			signals = append(signals, types.RawSignal{
				Source: c.Kind(),
				Handle: handle,
				Text:   text,
				URL:    item.Link,
			})
			if len(signals) >= limit {
				break
			}
		}
	}

	if len(signals) == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no results for %q", handle)
		}
		return nil, asUnavailable(c.Kind(), lastErr)
	}

	return signals, nil
}
