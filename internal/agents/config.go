package agents

import (
	"time"

	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/types"
)

// Config holds per-agent tunable parameters. Loaded once per run and
// immutable for the run's lifetime.
type Config struct {
	MaxFindings int           `validate:"gte=1,lte=20"`
	Timeout     time.Duration `validate:"gt=0"`
	MaxTokens   int           `validate:"gte=0"`
	Tier        llm.ModelTier
	Weights     map[string]float64
	// MaxCorpusChars caps how much corpus text is placed in a prompt.
	MaxCorpusChars int `validate:"gte=0"`
}

// DefaultConfig returns the default configuration for an agent kind.
func DefaultConfig(kind types.AgentKind) Config {
	cfg := Config{
		MaxFindings:    5,
		Timeout:        30 * time.Second,
		MaxTokens:      1024,
		Tier:           llm.TierStandard,
		MaxCorpusChars: 6000,
	}
	switch kind {
	case types.AgentCampaign:
		// Campaign analysis benefits from the stronger model.
		cfg.Tier = llm.TierAdvanced
	case types.AgentAnalytics:
		// Rule-based, no generation call.
		cfg.Weights = map[string]float64{
			"engagement":  0.4,
			"consistency": 0.3,
			"diversity":   0.3,
		}
	}
	return cfg
}
