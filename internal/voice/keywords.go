package voice

import (
	"sort"
	"strings"
)

// stopWords are excluded from keyword extraction. The list is short on
// purpose: corpora here are social posts, not prose.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "this": true,
	"with": true, "you": true, "your": true, "are": true, "was": true,
	"but": true, "not": true, "all": true, "can": true, "has": true,
	"have": true, "had": true, "from": true, "they": true, "them": true,
	"there": true, "their": true, "what": true, "when": true, "where": true,
	"will": true, "would": true, "could": true, "should": true, "about": true,
	"just": true, "like": true, "more": true, "some": true, "out": true,
	"into": true, "than": true, "then": true, "its": true, "it's": true,
	"our": true, "who": true, "how": true, "why": true, "get": true,
	"got": true, "one": true, "two": true, "been": true, "being": true,
	"were": true, "also": true, "very": true, "over": true, "because": true,
	"don't": true, "i'm": true, "we're": true, "new": true, "now": true,
	"today": true, "here": true, "via": true, "http": true, "https": true,
}

// ExtractKeywords returns up to max frequency-weighted terms from the
// texts, excluding stop words and the handle itself. Ordering is weight
// descending with alphabetical tie-break, so the result is deterministic.
func ExtractKeywords(texts []string, handle string, max int) []string {
	if max <= 0 {
		max = DefaultParams().MaxKeywords
	}
	handle = strings.ToLower(handle)

	counts := make(map[string]int)
	for _, text := range texts {
		for _, token := range tokenize(text) {
			if stopWords[token] || token == handle || len(token) < 3 {
				continue
			}
			counts[token]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})

	if len(terms) > max {
		terms = terms[:max]
	}
	return terms
}

// tokenize lowercases and strips non-letter runes, keeping apostrophes
// inside words.
func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '\'':
			return r
		case r >= '0' && r <= '9':
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}
