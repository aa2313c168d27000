package agents

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/types"
)

// analyticsAgent scores the handle from corpus metrics alone: average
// engagement, posting consistency, and source diversity. It is fully
// rule-based and makes no generation call, so its output is a pure
// function of {corpus, config}.
type analyticsAgent struct{}

// NewAnalyticsAgent creates the rule-based analytics agent.
func NewAnalyticsAgent() Agent {
	return &analyticsAgent{}
}

// Kind returns the agent kind.
func (a *analyticsAgent) Kind() types.AgentKind {
	return types.AgentAnalytics
}

// Run computes the analytics score. The gen parameter is accepted for
// interface uniformity and ignored.
func (a *analyticsAgent) Run(_ context.Context, corpus *types.Corpus, _ *types.Fingerprint, cfg Config, _ llm.Client) types.AgentReport {
	if corpus == nil || corpus.Len() == 0 {
		return erroredReport(a.Kind(), fmt.Errorf("empty corpus"))
	}

	weights := cfg.Weights
	if len(weights) == 0 {
		weights = DefaultConfig(a.Kind()).Weights
	}

	engagement := engagementScore(corpus)
	consistency := consistencyScore(corpus)
	diversity := diversityScore(corpus)

	total := weights["engagement"] + weights["consistency"] + weights["diversity"]
	if total == 0 {
		total = 1
	}
	score := (engagement*weights["engagement"] +
		consistency*weights["consistency"] +
		diversity*weights["diversity"]) / total

	findings := []types.Finding{
		{
			Title:  "Engagement level",
			Detail: fmt.Sprintf("average engagement score %.0f/100 across %d items", engagement, corpus.Len()),
		},
		{
			Title:  "Posting consistency",
			Detail: fmt.Sprintf("timestamp spread scores %.0f/100 for regularity", consistency),
		},
		{
			Title:  "Source diversity",
			Detail: fmt.Sprintf("signals drawn from %d of %d source kinds", len(corpus.Sources), len(types.AllSources())),
		},
	}
	if cfg.MaxFindings > 0 && len(findings) > cfg.MaxFindings {
		findings = findings[:cfg.MaxFindings]
	}

	return types.AgentReport{
		Kind:        a.Kind(),
		Score:       clampScore(int(math.Round(score))),
		Findings:    findings,
		GeneratedAt: time.Now().UTC(),
	}
}

// engagementScore maps mean log-engagement to 0-100.
func engagementScore(corpus *types.Corpus) float64 {
	var sum float64
	for _, item := range corpus.Items {
		sum += math.Log1p(float64(item.Engagement.Total()))
	}
	mean := sum / float64(corpus.Len())
	// Log1p(1000) is roughly 6.9; treat that as a strong signal.
	return math.Min(mean/7*100, 100)
}

// consistencyScore rewards corpora whose timestamped items are spread
// evenly rather than bursty. Items without timestamps are ignored.
func consistencyScore(corpus *types.Corpus) float64 {
	var stamps []time.Time
	for _, item := range corpus.Items {
		if !item.Timestamp.IsZero() {
			stamps = append(stamps, item.Timestamp)
		}
	}
	if len(stamps) < 3 {
		return 50 // not enough evidence either way
	}

	// Coefficient of variation of the gaps between consecutive posts.
	var gaps []float64
	for i := 1; i < len(stamps); i++ {
		gap := math.Abs(stamps[i].Sub(stamps[i-1]).Hours())
		gaps = append(gaps, gap)
	}
	var mean float64
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	if mean == 0 {
		return 50
	}
	var variance float64
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	cv := math.Sqrt(variance/float64(len(gaps))) / mean
	return math.Max(0, math.Min(100, 100-cv*40))
}

// diversityScore maps source coverage to 0-100.
func diversityScore(corpus *types.Corpus) float64 {
	return float64(len(corpus.Sources)) / float64(len(types.AllSources())) * 100
}
