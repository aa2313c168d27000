package aggregate

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/types"
)

func signal(source types.SourceKind, text string, ts time.Time, likes int) types.RawSignal {
	return types.RawSignal{
		Source:     source,
		Handle:     "alice",
		Timestamp:  ts,
		Text:       text,
		Engagement: types.Engagement{Likes: likes},
	}
}

func TestAggregate_TwoOfFourSourcesUp(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	timeline := make([]types.RawSignal, 5)
	for i := range timeline {
		timeline[i] = signal(types.SourceTimeline, fmt.Sprintf("timeline post %d", i), base.Add(time.Duration(i)*time.Hour), i)
	}
	search := make([]types.RawSignal, 3)
	for i := range search {
		search[i] = signal(types.SourceWebSearch, fmt.Sprintf("search mention %d", i), base.Add(time.Duration(i)*time.Minute), 0)
	}

	corpus, err := Aggregate("alice", []SourceResult{
		{Kind: types.SourceTimeline, Signals: timeline},
		{Kind: types.SourceWebSearch, Signals: search},
		{Kind: types.SourceVideo, Err: errors.New("source video unavailable")},
		{Kind: types.SourceReddit, Err: errors.New("source reddit unavailable")},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, corpus.Len())
	assert.Equal(t, []types.SourceKind{types.SourceTimeline, types.SourceWebSearch}, corpus.Sources)
}

func TestAggregate_AllSourcesFailed(t *testing.T) {
	var results []SourceResult
	for _, kind := range types.AllSources() {
		results = append(results, SourceResult{Kind: kind, Err: errors.New("down")})
	}

	_, err := Aggregate("bob", results)
	require.Error(t, err)

	var insufficient *InsufficientSignalError
	require.ErrorAs(t, err, &insufficient)
	assert.Len(t, insufficient.Failures, 4)
}

func TestAggregate_DedupeKeepsEarliestTimestamp(t *testing.T) {
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)

	corpus, err := Aggregate("alice", []SourceResult{
		{Kind: types.SourceTimeline, Signals: []types.RawSignal{
			signal(types.SourceTimeline, "Same   Text here", late, 0),
		}},
		{Kind: types.SourceReddit, Signals: []types.RawSignal{
			signal(types.SourceReddit, "same text HERE", early, 0),
		}},
	})
	require.NoError(t, err)

	require.Equal(t, 1, corpus.Len())
	assert.Equal(t, early, corpus.Items[0].Timestamp)
}

func TestAggregate_RanksRecencyAndEngagement(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	corpus, err := Aggregate("alice", []SourceResult{
		{Kind: types.SourceReddit, Signals: []types.RawSignal{
			signal(types.SourceReddit, "old quiet post", base, 0),
			signal(types.SourceReddit, "new popular post", base.Add(24*time.Hour), 500),
		}},
	})
	require.NoError(t, err)

	require.Equal(t, 2, corpus.Len())
	assert.Equal(t, "new popular post", corpus.Items[0].Text)
}

func TestAggregate_TieBreaksBySourcePriority(t *testing.T) {
	// Identical scores: no timestamps, no engagement.
	corpus, err := Aggregate("alice", []SourceResult{
		{Kind: types.SourceReddit, Signals: []types.RawSignal{
			signal(types.SourceReddit, "reddit item", time.Time{}, 0),
		}},
		{Kind: types.SourceTimeline, Signals: []types.RawSignal{
			signal(types.SourceTimeline, "timeline item", time.Time{}, 0),
		}},
	})
	require.NoError(t, err)

	require.Equal(t, 2, corpus.Len())
	assert.Equal(t, types.SourceTimeline, corpus.Items[0].Source)
	assert.Equal(t, types.SourceReddit, corpus.Items[1].Source)
}

func TestAggregate_DeterministicForFixedResults(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	results := []SourceResult{
		{Kind: types.SourceTimeline, Signals: []types.RawSignal{
			signal(types.SourceTimeline, "a", base, 3),
			signal(types.SourceTimeline, "b", base.Add(time.Hour), 1),
		}},
		{Kind: types.SourceReddit, Signals: []types.RawSignal{
			signal(types.SourceReddit, "c", base.Add(2*time.Hour), 9),
		}},
	}

	first, err := Aggregate("alice", results)
	require.NoError(t, err)
	second, err := Aggregate("alice", results)
	require.NoError(t, err)

	assert.Equal(t, first.Texts(), second.Texts())
}

func TestAggregate_DropsBlankSignals(t *testing.T) {
	corpus, err := Aggregate("alice", []SourceResult{
		{Kind: types.SourceTimeline, Signals: []types.RawSignal{
			signal(types.SourceTimeline, "   ", time.Time{}, 0),
			signal(types.SourceTimeline, "real content", time.Time{}, 0),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, corpus.Len())
}
