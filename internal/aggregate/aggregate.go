// Package aggregate normalizes and deduplicates connector outputs into
// one ranked corpus per run.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/BAWSA3/brandos/internal/types"
)

// Ranking weights for the recency/engagement composite. Exposed for
// tuning; the defaults favor recency.
const (
	RecencyWeight    = 0.6
	EngagementWeight = 0.4
)

// SourceResult is one connector's outcome from the conductor's fan-out,
// success or failure.
type SourceResult struct {
	Kind    types.SourceKind
	Signals []types.RawSignal
	Err     error
}

// InsufficientSignalError indicates that every source failed and the run
// cannot proceed. It is the only fatal aggregation outcome.
type InsufficientSignalError struct {
	Failures map[types.SourceKind]error
}

func (e *InsufficientSignalError) Error() string {
	return fmt.Sprintf("insufficient signal: all %d sources failed", len(e.Failures))
}

// Aggregate builds the corpus from the full set of connector results.
// It requires at least one successful source; with zero successes it
// returns InsufficientSignalError. The output ordering is deterministic
// for a fixed set of results regardless of fan-out timing.
func Aggregate(handle types.Handle, results []SourceResult) (*types.Corpus, error) {
	failures := make(map[types.SourceKind]error)
	anySuccess := false
	for _, r := range results {
		if r.Err != nil {
			failures[r.Kind] = r.Err
			continue
		}
		anySuccess = true
	}
	if !anySuccess {
		return nil, &InsufficientSignalError{Failures: failures}
	}

	items := dedupe(collect(results))
	rank(items)

	corpus := &types.Corpus{
		Handle: handle,
		Items:  make([]types.RawSignal, len(items)),
	}
	for i, item := range items {
		corpus.Items[i] = item.signal
	}

	seen := make(map[types.SourceKind]bool)
	for _, item := range corpus.Items {
		seen[item.Source] = true
	}
	for _, kind := range types.AllSources() {
		if seen[kind] {
			corpus.Sources = append(corpus.Sources, kind)
		}
	}

	return corpus, nil
}

// rankedItem pairs a signal with its original fetch order for tie-breaks.
type rankedItem struct {
	signal types.RawSignal
	order  int
	score  float64
}

func collect(results []SourceResult) []rankedItem {
	var items []rankedItem
	order := 0
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, sig := range r.Signals {
			if strings.TrimSpace(sig.Text) == "" {
				continue
			}
			items = append(items, rankedItem{signal: sig, order: order})
			order++
		}
	}
	return items
}

// dedupe drops near-identical texts, keeping the item with the earliest
// known timestamp. An unset timestamp never displaces a set one.
func dedupe(items []rankedItem) []rankedItem {
	byKey := make(map[string]int)
	var kept []rankedItem
	for _, item := range items {
		key := normalizeText(item.signal.Text)
		idx, exists := byKey[key]
		if !exists {
			byKey[key] = len(kept)
			kept = append(kept, item)
			continue
		}
		incoming, current := item.signal.Timestamp, kept[idx].signal.Timestamp
		if !incoming.IsZero() && (current.IsZero() || incoming.Before(current)) {
			// Keep the earlier item but preserve the winning slot's order.
			order := kept[idx].order
			kept[idx] = item
			kept[idx].order = order
		}
	}
	return kept
}

// rank orders items by composite score descending, breaking ties by
// source priority then original fetch order. Recency is measured against
// the newest item in the set, not wall clock, so the ordering is a pure
// function of the inputs.
func rank(items []rankedItem) {
	var newest, oldest int64
	var maxEngagement float64
	for _, item := range items {
		if item.signal.Timestamp.IsZero() {
			continue
		}
		ts := item.signal.Timestamp.Unix()
		if newest == 0 || ts > newest {
			newest = ts
		}
		if oldest == 0 || ts < oldest {
			oldest = ts
		}
	}
	for _, item := range items {
		if e := math.Log1p(float64(item.signal.Engagement.Total())); e > maxEngagement {
			maxEngagement = e
		}
	}

	span := float64(newest - oldest)
	for i := range items {
		var recency float64
		if !items[i].signal.Timestamp.IsZero() && span > 0 {
			recency = float64(items[i].signal.Timestamp.Unix()-oldest) / span
		} else if !items[i].signal.Timestamp.IsZero() {
			recency = 1
		}
		var engagement float64
		if maxEngagement > 0 {
			engagement = math.Log1p(float64(items[i].signal.Engagement.Total())) / maxEngagement
		}
		items[i].score = RecencyWeight*recency + EngagementWeight*engagement
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		pi, pj := types.SourcePriority(items[i].signal.Source), types.SourcePriority(items[j].signal.Source)
		if pi != pj {
			return pi < pj
		}
		return items[i].order < items[j].order
	})
}

// normalizeText lowercases and collapses whitespace so near-identical
// texts dedupe to the same key.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
