package agents

import "github.com/BAWSA3/brandos/internal/types"

// NewAuthorityAgent assesses how much topical authority the handle
// projects. Delegates scoring to the text-generation capability.
func NewAuthorityAgent() Agent {
	return &llmAgent{kind: types.AgentAuthority, promptKey: "authority"}
}

// NewCampaignAgent assesses campaign readiness: cadence, hooks, and
// message consistency.
func NewCampaignAgent() Agent {
	return &llmAgent{kind: types.AgentCampaign, promptKey: "campaign"}
}

// NewContentAgent assesses content quality and voice fit.
func NewContentAgent() Agent {
	return &llmAgent{kind: types.AgentContent, promptKey: "content"}
}
