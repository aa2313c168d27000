package sources

import (
	"context"
	"time"

	"github.com/BAWSA3/brandos/internal/types"
)

// DefaultFetchTimeout bounds a single connector call when the caller
// supplied no tighter deadline.
const DefaultFetchTimeout = 10 * time.Second

// DefaultSignalLimit is the per-source item cap when the caller passes
// a non-positive limit.
const DefaultSignalLimit = 25

// Connector fetches raw, source-specific signals for a handle.
// Implementations must be safe for concurrent use: one connector value
// may serve overlapping calls for the same or different handles.
// Failures are returned as Unavailable or RateLimitError values.
type Connector interface {
	Kind() types.SourceKind
	Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error)
}

// guard applies the connector's request budget and timeout. It returns a
// derived context the connector must use for its upstream calls, or a
// RateLimitError when the budget is exhausted.
func guard(ctx context.Context, kind types.SourceKind, budget *Budget, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if budget != nil && !budget.Allow() {
		return nil, nil, &RateLimitError{Source: kind, RetryAfter: budget.RetryAfter()}
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	guarded, cancel := context.WithTimeout(ctx, timeout)
	return guarded, cancel, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultSignalLimit
	}
	return limit
}
