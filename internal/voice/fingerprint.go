// Package voice derives a stylistic fingerprint from a handle's corpus.
// The pipeline is a pure function of the corpus: no network calls, and
// identical input always yields an identical fingerprint.
package voice

import (
	"fmt"
	"strings"

	"github.com/BAWSA3/brandos/internal/types"
)

// Params holds the tunable thresholds and weights of the pipeline.
// They are parameters rather than constants so callers can calibrate
// without a rebuild.
type Params struct {
	MinCorpusSize      int     // below this the fingerprint is flagged low-evidence
	MaxKeywords        int     // keyword list cap
	FormalSentenceLen  float64 // sentence word count mapped to formality 100
	EnergyMarkerWeight float64 // exclamations/caps per sentence mapped to energy 100
}

// DefaultParams returns the default pipeline parameters.
func DefaultParams() Params {
	return Params{
		MinCorpusSize:      5,
		MaxKeywords:        12,
		FormalSentenceLen:  24,
		EnergyMarkerWeight: 160,
	}
}

// hedges lower the confidence dimension; certainty markers raise it.
var hedges = []string{
	"maybe", "perhaps", "possibly", "might", "could be", "i think",
	"i guess", "sort of", "kind of", "probably", "not sure", "seems",
}

var certaintyMarkers = []string{
	"definitely", "certainly", "always", "never", "absolutely", "clearly",
	"without a doubt", "i know", "guaranteed", "will", "must",
}

var warmthMarkers = []string{
	"thanks", "thank you", "love", "great", "awesome", "glad",
	"appreciate", "welcome", "happy", "excited",
}

// Compute derives the fingerprint for a non-empty corpus. It never
// fails: a corpus below MinCorpusSize still produces a fingerprint,
// flagged low-evidence with a summary that says so.
func Compute(corpus *types.Corpus, params Params) types.Fingerprint {
	if params.MinCorpusSize <= 0 {
		params = DefaultParams()
	}

	texts := corpus.Texts()
	joined := strings.Join(texts, "\n")
	lower := strings.ToLower(joined)
	sentences := splitSentences(joined)
	words := strings.Fields(lower)

	formality := scoreFormality(sentences, params)
	energy := scoreEnergy(joined, sentences, params)
	confidence := scoreConfidence(lower, len(sentences))
	warmth := scoreMarkerRate(lower, warmthMarkers, len(sentences), 120)
	directness := scoreDirectness(lower, sentences, words)

	fp := types.Fingerprint{
		ToneScores: map[string]int{
			types.ToneFormality:  formality,
			types.ToneEnergy:     energy,
			types.ToneConfidence: confidence,
			types.ToneWarmth:     warmth,
			types.ToneDirectness: directness,
		},
		Formality:   formality,
		Energy:      energy,
		Confidence:  confidence,
		Keywords:    ExtractKeywords(texts, string(corpus.Handle), params.MaxKeywords),
		LowEvidence: corpus.Len() < params.MinCorpusSize,
	}
	fp.VoiceSummary = summarize(&fp, corpus.Len())
	return fp
}

// splitSentences breaks text on terminal punctuation and newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			current.WriteRune(r)
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}

func scoreFormality(sentences []string, params Params) int {
	if len(sentences) == 0 {
		return 0
	}
	totalWords := 0
	contractions := 0
	for _, s := range sentences {
		fields := strings.Fields(s)
		totalWords += len(fields)
		for _, w := range fields {
			if strings.Contains(w, "'") {
				contractions++
			}
		}
	}
	avgLen := float64(totalWords) / float64(len(sentences))
	score := avgLen / params.FormalSentenceLen * 100
	// Contractions pull the register toward casual.
	score -= float64(contractions) / float64(len(sentences)) * 20
	return clamp(score)
}

func scoreEnergy(joined string, sentences []string, params Params) int {
	if len(sentences) == 0 {
		return 0
	}
	exclamations := strings.Count(joined, "!")
	capsWords := 0
	for _, w := range strings.Fields(joined) {
		if len(w) >= 3 && w == strings.ToUpper(w) && strings.ContainsAny(w, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			capsWords++
		}
	}
	rate := float64(exclamations+capsWords) / float64(len(sentences))
	return clamp(rate * params.EnergyMarkerWeight)
}

func scoreConfidence(lower string, sentenceCount int) int {
	if sentenceCount == 0 {
		return 50
	}
	certain := countMarkers(lower, certaintyMarkers)
	hedged := countMarkers(lower, hedges)
	// Centered at 50; markers shift the score in either direction.
	score := 50 + float64(certain-hedged)/float64(sentenceCount)*100
	return clamp(score)
}

func scoreMarkerRate(lower string, markers []string, sentenceCount int, weight float64) int {
	if sentenceCount == 0 {
		return 0
	}
	rate := float64(countMarkers(lower, markers)) / float64(sentenceCount)
	return clamp(rate * weight)
}

func scoreDirectness(lower string, sentences []string, words []string) int {
	if len(sentences) == 0 || len(words) == 0 {
		return 0
	}
	secondPerson := 0
	for _, w := range words {
		if w == "you" || w == "your" || w == "you're" {
			secondPerson++
		}
	}
	short := 0
	for _, s := range sentences {
		if len(strings.Fields(s)) <= 8 {
			short++
		}
	}
	score := float64(secondPerson)/float64(len(words))*400 +
		float64(short)/float64(len(sentences))*60
	return clamp(score)
}

func countMarkers(lower string, markers []string) int {
	count := 0
	for _, m := range markers {
		count += strings.Count(lower, m)
	}
	return count
}

func clamp(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// summarize renders a human-readable voice summary from the scores.
func summarize(fp *types.Fingerprint, itemCount int) string {
	var parts []string
	parts = append(parts, bucket(fp.Formality, "casual", "conversational", "formal")+" register")
	parts = append(parts, bucket(fp.Energy, "measured", "lively", "high-energy")+" delivery")
	parts = append(parts, bucket(fp.Confidence, "hedged", "balanced", "confident")+" phrasing")

	summary := strings.Join(parts, ", ")
	if len(fp.Keywords) > 0 {
		top := fp.Keywords
		if len(top) > 3 {
			top = top[:3]
		}
		summary += "; recurring themes: " + strings.Join(top, ", ")
	}
	if fp.LowEvidence {
		summary += fmt.Sprintf(" (based on limited evidence: %d items)", itemCount)
	}
	return summary
}

func bucket(score int, low, mid, high string) string {
	switch {
	case score < 34:
		return low
	case score < 67:
		return mid
	default:
		return high
	}
}
