// Package agents contains the analysis agents that turn a corpus and
// fingerprint into scored partial reports. Agents are mutually
// independent: each is a function of {corpus, fingerprint, config} only,
// which is what allows the conductor to run them concurrently.
package agents

import (
	"context"

	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/types"
)

// Agent is one analysis capability. Run never returns an error: any
// failure (timeout, generation error, malformed output) is captured in
// the report's Error field.
type Agent interface {
	Kind() types.AgentKind
	Run(ctx context.Context, corpus *types.Corpus, fp *types.Fingerprint, cfg Config, gen llm.Client) types.AgentReport
}

// Registry returns the fixed set of configured agents in stable order.
func Registry() []Agent {
	return []Agent{
		NewAuthorityAgent(),
		NewCampaignAgent(),
		NewContentAgent(),
		NewAnalyticsAgent(),
	}
}
