package types

import "strings"

// Corpus is the deduplicated, ranked sequence of signals for one handle.
// It is assembled once by the aggregator and never mutated afterwards;
// the fingerprint pipeline and all agents share it read-only.
type Corpus struct {
	Handle  Handle       `json:"handle"`
	Items   []RawSignal  `json:"items"`
	Sources []SourceKind `json:"sources"` // sources that contributed at least one item
}

// Len returns the number of items in the corpus.
func (c *Corpus) Len() int {
	return len(c.Items)
}

// Texts returns the item texts in ranked order.
func (c *Corpus) Texts() []string {
	texts := make([]string, len(c.Items))
	for i, item := range c.Items {
		texts[i] = item.Text
	}
	return texts
}

// JoinedText concatenates item texts up to maxChars, for prompt building.
// A zero or negative maxChars means no limit.
func (c *Corpus) JoinedText(maxChars int) string {
	var sb strings.Builder
	for _, item := range c.Items {
		if maxChars > 0 && sb.Len()+len(item.Text)+1 > maxChars {
			break
		}
		sb.WriteString(item.Text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// HasSource reports whether the given source contributed to the corpus.
func (c *Corpus) HasSource(kind SourceKind) bool {
	for _, s := range c.Sources {
		if s == kind {
			return true
		}
	}
	return false
}
