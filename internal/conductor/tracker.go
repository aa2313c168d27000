package conductor

import (
	"sync"

	"github.com/BAWSA3/brandos/internal/types"
)

// tracker keeps the latest run per handle. Finished runs stay visible
// until a new run for the same handle replaces them, so GetReport can
// answer after the cache entry expires or when no cache is configured.
type tracker struct {
	mu   sync.Mutex
	runs map[types.Handle]*Run
}

func newTracker() *tracker {
	return &tracker{runs: make(map[types.Handle]*Run)}
}

// start returns the run for a handle, creating one when no run is in
// flight. The boolean is true when the returned run is new and the
// caller owns executing it.
func (t *tracker) start(handle types.Handle) (*Run, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.runs[handle]; ok {
		select {
		case <-existing.Done():
		default:
			return existing, false
		}
	}
	run := newRun(handle)
	t.runs[handle] = run
	return run, true
}

func (t *tracker) get(handle types.Handle) (*Run, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	run, ok := t.runs[handle]
	return run, ok
}
