// Package types defines the shared data model for the brand analysis pipeline.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Handle identifies the social-media account being analyzed.
// It is the cache and correlation key for a run.
type Handle string

// ParseHandle normalizes raw user input into a Handle. A leading "@"
// is stripped and the rest is lowercased so "@Alice" and "alice" hit
// the same cache entry.
func ParseHandle(raw string) (Handle, error) {
	h := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "@"))
	if h == "" {
		return "", fmt.Errorf("handle is empty")
	}
	if len(h) > 64 {
		return "", fmt.Errorf("handle too long: %d characters", len(h))
	}
	for _, r := range h {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-' {
			continue
		}
		return "", fmt.Errorf("handle contains invalid character %q", r)
	}
	return Handle(h), nil
}

// SourceKind identifies which connector produced a signal.
type SourceKind string

// Known source kinds, in ranking priority order.
const (
	SourceTimeline  SourceKind = "timeline"
	SourceWebSearch SourceKind = "websearch"
	SourceVideo     SourceKind = "video"
	SourceReddit    SourceKind = "reddit"
)

// AllSources returns the source kinds in priority order (highest first).
func AllSources() []SourceKind {
	return []SourceKind{SourceTimeline, SourceWebSearch, SourceVideo, SourceReddit}
}

// SourcePriority returns the tie-break rank of a source. Lower is better.
// Unknown sources sort last.
func SourcePriority(kind SourceKind) int {
	for i, k := range AllSources() {
		if k == kind {
			return i
		}
	}
	return len(AllSources())
}

// Engagement holds interaction counts attached to a signal.
type Engagement struct {
	Likes   int `json:"likes,omitempty"`
	Replies int `json:"replies,omitempty"`
	Shares  int `json:"shares,omitempty"`
	Views   int `json:"views,omitempty"`
}

// Total returns a single engagement magnitude used for ranking.
// Views are discounted because they are far cheaper than interactions.
func (e Engagement) Total() int {
	return e.Likes + e.Replies + e.Shares + e.Views/100
}

// RawSignal is one item of public text fetched from a connector.
// A signal is owned by its connector until handed to the aggregator
// and is read-only afterwards.
type RawSignal struct {
	Source     SourceKind `json:"source"`
	Handle     Handle     `json:"handle"`
	Timestamp  time.Time  `json:"timestamp"`
	Text       string     `json:"text"`
	URL        string     `json:"url,omitempty"`
	Engagement Engagement `json:"engagement"`
}
