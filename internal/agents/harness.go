package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/prompts"
	"github.com/BAWSA3/brandos/internal/types"
)

// llmAgent is the shared harness for agents that delegate scoring to the
// text-generation capability. Each concrete agent is one of these with
// its own prompt template.
type llmAgent struct {
	kind      types.AgentKind
	promptKey string
}

// Kind returns the agent kind.
func (a *llmAgent) Kind() types.AgentKind {
	return a.kind
}

// agentOutput mirrors the JSON the generator is asked to produce.
type agentOutput struct {
	Score    int             `json:"score"`
	Findings []types.Finding `json:"findings"`
}

// Run builds the prompt, calls the generator under the configured
// timeout, and validates the response. Every failure path returns an
// errored report rather than propagating.
func (a *llmAgent) Run(ctx context.Context, corpus *types.Corpus, fp *types.Fingerprint, cfg Config, gen llm.Client) types.AgentReport {
	if gen == nil {
		return erroredReport(a.kind, fmt.Errorf("no text generator configured"))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig(a.kind).Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	prompt := a.buildPrompt(corpus, fp, cfg)
	raw, err := gen.GenerateJSON(callCtx, prompt, cfg.Tier, cfg.MaxTokens)
	if err != nil {
		return erroredReport(a.kind, err)
	}

	raw = llm.CleanJSONBlock(raw)
	if err := validateOutput(raw); err != nil {
		return erroredReport(a.kind, err)
	}

	var out agentOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return erroredReport(a.kind, fmt.Errorf("malformed output: %w", err))
	}

	maxFindings := cfg.MaxFindings
	if maxFindings <= 0 {
		maxFindings = DefaultConfig(a.kind).MaxFindings
	}
	if len(out.Findings) > maxFindings {
		out.Findings = out.Findings[:maxFindings]
	}

	return types.AgentReport{
		Kind:        a.kind,
		Score:       clampScore(out.Score),
		Findings:    out.Findings,
		GeneratedAt: time.Now().UTC(),
	}
}

func (a *llmAgent) buildPrompt(corpus *types.Corpus, fp *types.Fingerprint, cfg Config) string {
	maxChars := cfg.MaxCorpusChars
	if maxChars <= 0 {
		maxChars = DefaultConfig(a.kind).MaxCorpusChars
	}

	template := prompts.MustGet("agents.json", a.promptKey)
	return prompts.Format(template, map[string]string{
		"Handle":      string(corpus.Handle),
		"Fingerprint": describeFingerprint(fp),
		"Corpus":      corpus.JoinedText(maxChars),
		"MaxFindings": fmt.Sprintf("%d", max(cfg.MaxFindings, 1)),
	})
}

// describeFingerprint renders the fingerprint for prompt context.
func describeFingerprint(fp *types.Fingerprint) string {
	var sb strings.Builder
	sb.WriteString(fp.VoiceSummary)
	sb.WriteString("\n")
	for _, dim := range []string{
		types.ToneFormality, types.ToneEnergy, types.ToneConfidence,
		types.ToneWarmth, types.ToneDirectness,
	} {
		fmt.Fprintf(&sb, "- %s: %d/100\n", dim, fp.Tone(dim))
	}
	if len(fp.Keywords) > 0 {
		sb.WriteString("keywords: " + strings.Join(fp.Keywords, ", "))
	}
	return sb.String()
}

// erroredReport produces the failure value for an agent. Error is set
// and Score is meaningless, which excludes it from synthesis.
func erroredReport(kind types.AgentKind, err error) types.AgentReport {
	return types.AgentReport{
		Kind:        kind,
		Error:       err.Error(),
		GeneratedAt: time.Now().UTC(),
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
