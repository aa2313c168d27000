package conductor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/BAWSA3/brandos/internal/aggregate"
	"github.com/BAWSA3/brandos/internal/agents"
	"github.com/BAWSA3/brandos/internal/sources"
	"github.com/BAWSA3/brandos/internal/types"
	"github.com/BAWSA3/brandos/internal/voice"
)

// execute drives the run through its stages. Cancellation is observed
// at each stage boundary: a canceled context fails the run and the
// stage's partial results are discarded.
func (c *Conductor) execute(ctx context.Context, handle types.Handle, run *Run) (*types.UnifiedReport, error) {
	start := time.Now()
	c.logger.Info("starting run",
		zap.String("handle", string(handle)),
		zap.String("run_id", run.ID.String()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	run.setState(StateFetchingSources)
	results := c.fetchSources(ctx, handle)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	run.setState(StateAggregating)
	corpus, err := aggregate.Aggregate(handle, results)
	if err != nil {
		c.logger.Warn("run failed during aggregation",
			zap.String("handle", string(handle)),
			zap.Error(err))
		return nil, err
	}
	c.logger.Info("corpus assembled",
		zap.String("handle", string(handle)),
		zap.Int("items", corpus.Len()),
		zap.Int("sources", len(corpus.Sources)))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	run.setState(StateFingerprinting)
	params := voice.DefaultParams()
	params.MinCorpusSize = c.opts.MinCorpusSize
	fp := voice.Compute(corpus, params)
	run.emit(Event{Type: EventFingerprint, Fingerprint: &fp})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	run.setState(StateRunningAgents)
	reports := c.runAgents(ctx, corpus, &fp, run)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	run.setState(StateSynthesizing)
	report := synthesize(handle, fp, reports)

	c.finalize(handle, report)
	c.logger.Info("run complete",
		zap.String("handle", string(handle)),
		zap.Bool("degraded", report.Degraded),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// fetchSources runs every connector concurrently under the connector
// semaphore and the stage deadline. A connector still waiting on the
// semaphore at the deadline resolves as unavailable; one already in
// flight returns whatever its own context handling produces.
func (c *Conductor) fetchSources(ctx context.Context, handle types.Handle) []aggregate.SourceResult {
	stageCtx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(int64(c.opts.MaxConnectorConcurrency))
	results := make([]aggregate.SourceResult, len(c.connectors))

	var wg sync.WaitGroup
	for i, conn := range c.connectors {
		wg.Add(1)
		go func(i int, conn sources.Connector) {
			defer wg.Done()
			kind := conn.Kind()
			if err := sem.Acquire(stageCtx, 1); err != nil {
				results[i] = aggregate.SourceResult{
					Kind: kind,
					Err:  &sources.Unavailable{Source: kind, Cause: fmt.Errorf("fetch stage deadline: %w", err)},
				}
				return
			}
			defer sem.Release(1)

			signals, err := conn.Fetch(stageCtx, handle, c.opts.SignalLimit)
			if err != nil {
				c.logger.Warn("connector failed",
					zap.String("source", string(kind)),
					zap.String("handle", string(handle)),
					zap.Error(err))
			}
			results[i] = aggregate.SourceResult{Kind: kind, Signals: signals, Err: err}
		}(i, conn)
	}
	wg.Wait()
	return results
}

// runAgents runs every agent concurrently under the agent semaphore
// and a stage deadline sized to the semaphore waves. Each agent gets
// its default config with the conductor's timeout applied; a failed or
// timed-out agent contributes an errored report and never aborts the
// others.
func (c *Conductor) runAgents(ctx context.Context, corpus *types.Corpus, fp *types.Fingerprint, run *Run) map[types.AgentKind]types.AgentReport {
	waves := (len(c.agents) + c.opts.MaxAgentConcurrency - 1) / c.opts.MaxAgentConcurrency
	if waves < 1 {
		waves = 1
	}
	stageCtx, cancel := context.WithTimeout(ctx, time.Duration(waves)*c.opts.AgentTimeout)
	defer cancel()

	sem := semaphore.NewWeighted(int64(c.opts.MaxAgentConcurrency))
	reports := make([]types.AgentReport, len(c.agents))

	var wg sync.WaitGroup
	for i, agent := range c.agents {
		wg.Add(1)
		go func(i int, agent agents.Agent) {
			defer wg.Done()
			kind := agent.Kind()
			if err := sem.Acquire(stageCtx, 1); err != nil {
				reports[i] = types.AgentReport{
					Kind:        kind,
					Error:       fmt.Sprintf("agent not started: %v", err),
					GeneratedAt: time.Now().UTC(),
				}
				run.recordAgent(reports[i])
				return
			}
			defer sem.Release(1)

			cfg := agents.DefaultConfig(kind)
			cfg.Timeout = c.opts.AgentTimeout
			report := agent.Run(stageCtx, corpus, fp, cfg, c.gen)
			if report.Errored() {
				c.logger.Warn("agent errored",
					zap.String("agent", string(kind)),
					zap.String("error", report.Error))
			}
			reports[i] = report
			run.recordAgent(report)
		}(i, agent)
	}
	wg.Wait()

	out := make(map[types.AgentKind]types.AgentReport, len(reports))
	for _, report := range reports {
		out[report.Kind] = report
	}
	return out
}

// synthesize folds the agent reports into the unified report. The
// overall score is the mean of the non-errored agent scores; with zero
// successes it stays nil. Degraded is set when any agent errored.
func synthesize(handle types.Handle, fp types.Fingerprint, reports map[types.AgentKind]types.AgentReport) *types.UnifiedReport {
	var sum float64
	var succeeded int
	degraded := false
	for _, report := range reports {
		if report.Errored() {
			degraded = true
			continue
		}
		sum += float64(report.Score)
		succeeded++
	}

	report := &types.UnifiedReport{
		Handle:      handle,
		Fingerprint: fp,
		Agents:      reports,
		Degraded:    degraded,
		GeneratedAt: time.Now().UTC(),
	}
	if succeeded > 0 {
		overall := sum / float64(succeeded)
		report.OverallScore = &overall
	}
	return report
}

// finalize caches and persists a finished report. Both writes are
// best-effort: a failure is logged and the run still succeeds.
func (c *Conductor) finalize(handle types.Handle, report *types.UnifiedReport) {
	if c.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), c.opts.SinkTimeout)
		if err := c.cache.Set(ctx, handle, report, c.opts.CacheTTL); err != nil {
			c.logger.Warn("report cache write failed",
				zap.String("handle", string(handle)),
				zap.Error(err))
		}
		cancel()
	}

	if c.sink != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.opts.SinkTimeout)
			defer cancel()
			if id, err := c.sink.SaveReport(ctx, report); err != nil {
				c.logger.Warn("report persistence failed",
					zap.String("handle", string(handle)),
					zap.Error(err))
			} else {
				c.logger.Debug("report persisted",
					zap.String("handle", string(handle)),
					zap.String("report_id", id.String()))
			}
		}()
	}
}
