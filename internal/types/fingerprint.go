package types

// Tone dimension names used in Fingerprint.ToneScores.
const (
	ToneFormality  = "formality"
	ToneEnergy     = "energy"
	ToneConfidence = "confidence"
	ToneWarmth     = "warmth"
	ToneDirectness = "directness"
)

// Fingerprint is the numeric/lexical summary of a handle's communication
// style. It is computed exactly once per run from the corpus and is
// immutable afterwards.
type Fingerprint struct {
	ToneScores   map[string]int `json:"tone_scores"` // dimension -> 0-100
	Formality    int            `json:"formality"`
	Energy       int            `json:"energy"`
	Confidence   int            `json:"confidence"`
	Keywords     []string       `json:"keywords"` // weight-descending, deduplicated
	VoiceSummary string         `json:"voice_summary"`
	LowEvidence  bool           `json:"low_evidence"` // corpus was below the minimum item count
}

// Tone returns the score for a dimension, or 0 if absent.
func (f *Fingerprint) Tone(dimension string) int {
	return f.ToneScores[dimension]
}
