package types

import "time"

// AgentKind identifies one of the fixed analysis agents.
type AgentKind string

// The fixed agent registry.
const (
	AgentAuthority AgentKind = "authority"
	AgentCampaign  AgentKind = "campaign"
	AgentContent   AgentKind = "content"
	AgentAnalytics AgentKind = "analytics"
)

// AllAgents returns the configured agent kinds in stable order.
func AllAgents() []AgentKind {
	return []AgentKind{AgentAuthority, AgentCampaign, AgentContent, AgentAnalytics}
}

// Finding is one structured observation produced by an agent.
type Finding struct {
	Title    string `json:"title"`
	Detail   string `json:"detail"`
	Evidence string `json:"evidence,omitempty"`
}

// AgentReport is one agent's scored output for a run. Error is set
// if and only if the agent produced no score.
type AgentReport struct {
	Kind        AgentKind `json:"kind"`
	Score       int       `json:"score"` // 0-100, meaningless when Error is set
	Findings    []Finding `json:"findings,omitempty"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Errored reports whether the agent failed to produce a score. Value
// receiver so it can be called directly on a map entry.
func (r AgentReport) Errored() bool {
	return r.Error != ""
}

// UnifiedReport is the terminal artifact of one orchestration run.
// Immutable once emitted; cached keyed by Handle.
type UnifiedReport struct {
	Handle       Handle                    `json:"handle"`
	Fingerprint  Fingerprint               `json:"fingerprint"`
	Agents       map[AgentKind]AgentReport `json:"agents"`
	OverallScore *float64                  `json:"overall_score"` // nil when every agent errored
	Degraded     bool                      `json:"degraded"`      // at least one agent errored
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// Succeeded returns the reports that produced a score.
func (u *UnifiedReport) Succeeded() []AgentReport {
	var ok []AgentReport
	for _, kind := range AllAgents() {
		if r, exists := u.Agents[kind]; exists && !r.Errored() {
			ok = append(ok, r)
		}
	}
	return ok
}
