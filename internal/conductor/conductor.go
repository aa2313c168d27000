package conductor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BAWSA3/brandos/internal/agents"
	"github.com/BAWSA3/brandos/internal/cache"
	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/sources"
	"github.com/BAWSA3/brandos/internal/types"
)

// ErrNotFound means no report exists for the handle and no run is in
// flight.
var ErrNotFound = errors.New("report not found")

// ErrInProgress means a run for the handle has started but not yet
// produced a report.
var ErrInProgress = errors.New("report generation in progress")

// Sink receives finished reports for persistence. Writes are
// fire-and-forget from the conductor's point of view.
type Sink interface {
	SaveReport(ctx context.Context, report *types.UnifiedReport) (uuid.UUID, error)
}

// Options tunes concurrency, timeouts, and run thresholds.
type Options struct {
	// MaxConnectorConcurrency bounds how many source connectors fetch
	// at once.
	MaxConnectorConcurrency int
	// MaxAgentConcurrency bounds how many analysis agents run at once.
	MaxAgentConcurrency int
	// FetchTimeout bounds the whole fetching stage. Connectors still
	// pending at the deadline resolve as unavailable.
	FetchTimeout time.Duration
	// AgentTimeout bounds each individual agent invocation.
	AgentTimeout time.Duration
	// SinkTimeout bounds the background persistence write.
	SinkTimeout time.Duration
	// CacheTTL is how long finished reports stay cached.
	CacheTTL time.Duration
	// SignalLimit is the per-connector signal cap passed to Fetch.
	SignalLimit int
	// MinCorpusSize is forwarded to the voice fingerprint as the
	// low-evidence threshold.
	MinCorpusSize int
}

// DefaultOptions returns the standard run tuning.
func DefaultOptions() Options {
	return Options{
		MaxConnectorConcurrency: 4,
		MaxAgentConcurrency:     2,
		FetchTimeout:            30 * time.Second,
		AgentTimeout:            30 * time.Second,
		SinkTimeout:             10 * time.Second,
		CacheTTL:                1 * time.Hour,
		SignalLimit:             sources.DefaultSignalLimit,
		MinCorpusSize:           5,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxConnectorConcurrency <= 0 {
		o.MaxConnectorConcurrency = def.MaxConnectorConcurrency
	}
	if o.MaxAgentConcurrency <= 0 {
		o.MaxAgentConcurrency = def.MaxAgentConcurrency
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = def.FetchTimeout
	}
	if o.AgentTimeout <= 0 {
		o.AgentTimeout = def.AgentTimeout
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = def.SinkTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = def.CacheTTL
	}
	if o.SignalLimit <= 0 {
		o.SignalLimit = def.SignalLimit
	}
	if o.MinCorpusSize <= 0 {
		o.MinCorpusSize = def.MinCorpusSize
	}
	return o
}

// Conductor wires connectors, agents, the LLM client, the cache, and
// the persistence sink into a single Analyze pipeline, and tracks
// in-flight runs per handle.
type Conductor struct {
	connectors []sources.Connector
	agents     []agents.Agent
	gen        llm.Client
	cache      cache.Store
	sink       Sink
	opts       Options
	logger     *zap.Logger

	tracker *tracker
}

// New builds a Conductor. The cache and sink may be nil; nil disables
// the corresponding behavior. Agent configs come from
// agents.DefaultConfig with the conductor's AgentTimeout applied.
func New(connectors []sources.Connector, agentList []agents.Agent, gen llm.Client, store cache.Store, sink Sink, opts Options, logger *zap.Logger) *Conductor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Conductor{
		connectors: connectors,
		agents:     agentList,
		gen:        gen,
		cache:      store,
		sink:       sink,
		opts:       opts.withDefaults(),
		logger:     logger,
		tracker:    newTracker(),
	}
}

// GetReport resolves a handle to its latest report without triggering
// a run. It checks the cache first, then in-flight and recently
// finished runs. Returns ErrInProgress while a run is active and
// ErrNotFound when nothing is known about the handle.
func (c *Conductor) GetReport(ctx context.Context, handle types.Handle) (*types.UnifiedReport, error) {
	if c.cache != nil {
		report, found, err := c.cache.Get(ctx, handle)
		if err != nil {
			c.logger.Warn("report cache lookup failed",
				zap.String("handle", string(handle)),
				zap.Error(err))
		} else if found {
			return report, nil
		}
	}

	run, ok := c.tracker.get(handle)
	if !ok {
		return nil, ErrNotFound
	}
	switch run.State() {
	case StateDone:
		report, _ := run.Report()
		return report, nil
	case StateFailed:
		return nil, ErrNotFound
	default:
		return nil, ErrInProgress
	}
}

// Subscribe attaches to the in-flight run for a handle. The boolean is
// false when no run is active.
func (c *Conductor) Subscribe(handle types.Handle) (<-chan Event, func(), bool) {
	run, ok := c.tracker.get(handle)
	if !ok {
		return nil, nil, false
	}
	switch run.State() {
	case StateDone, StateFailed:
		return nil, nil, false
	}
	ch, cancel := run.Subscribe()
	return ch, cancel, true
}

// Start kicks off an asynchronous run for the handle and returns its
// tracker entry. If a run is already in flight the existing run is
// returned instead of starting a second one.
func (c *Conductor) Start(ctx context.Context, handle types.Handle) *Run {
	run, started := c.tracker.start(handle)
	if !started {
		return run
	}
	go func() {
		report, err := c.execute(ctx, handle, run)
		run.finish(report, err)
	}()
	return run
}

// Analyze runs the full pipeline synchronously and returns the
// unified report. A fresh cached report short-circuits the run.
func (c *Conductor) Analyze(ctx context.Context, handle types.Handle) (*types.UnifiedReport, error) {
	if c.cache != nil {
		report, found, err := c.cache.Get(ctx, handle)
		if err != nil {
			c.logger.Warn("report cache lookup failed",
				zap.String("handle", string(handle)),
				zap.Error(err))
		} else if found {
			c.logger.Info("serving cached report", zap.String("handle", string(handle)))
			return report, nil
		}
	}

	run, started := c.tracker.start(handle)
	if !started {
		// Another caller is already running this handle; wait for it.
		select {
		case <-run.Done():
			return run.Report()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	report, err := c.execute(ctx, handle, run)
	run.finish(report, err)
	return report, err
}
