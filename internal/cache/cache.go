// Package cache provides the per-handle report cache. The cache is the
// only mutable shared resource in the system: writes are
// last-writer-wins keyed by handle, reads never block writes.
package cache

import (
	"context"
	"time"

	"github.com/BAWSA3/brandos/internal/types"
)

// Store is the injectable report cache. A nil Store is a valid
// configuration: the conductor simply never short-circuits.
type Store interface {
	// Get returns the cached report for the handle, or found=false when
	// absent or expired.
	Get(ctx context.Context, handle types.Handle) (report *types.UnifiedReport, found bool, err error)
	// Set stores the report with a time-to-live.
	Set(ctx context.Context, handle types.Handle, report *types.UnifiedReport, ttl time.Duration) error
}
