package agents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/types"
)

// fakeGenerator is a deterministic llm.Client for tests.
type fakeGenerator struct {
	response string
	err      error
	delay    time.Duration
	calls    int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, tier llm.ModelTier, maxTokens int) (string, error) {
	return f.GenerateJSON(ctx, prompt, tier, maxTokens)
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, maxTokens int) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", &llm.GenerationError{Message: "call cancelled", Cause: ctx.Err()}
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) Close() error { return nil }

func testCorpus() *types.Corpus {
	return &types.Corpus{
		Handle: "alice",
		Items: []types.RawSignal{
			{Source: types.SourceTimeline, Handle: "alice", Text: "shipping the release today"},
			{Source: types.SourceReddit, Handle: "alice", Text: "a long post about schedulers"},
		},
		Sources: []types.SourceKind{types.SourceTimeline, types.SourceReddit},
	}
}

func testFingerprint() *types.Fingerprint {
	return &types.Fingerprint{
		ToneScores:   map[string]int{types.ToneFormality: 40, types.ToneEnergy: 70, types.ToneConfidence: 60},
		Formality:    40,
		Energy:       70,
		Confidence:   60,
		Keywords:     []string{"schedulers", "release"},
		VoiceSummary: "conversational register, lively delivery, balanced phrasing",
	}
}

func TestLLMAgent_Success(t *testing.T) {
	gen := &fakeGenerator{response: `{"score": 82, "findings": [{"title": "Deep expertise", "detail": "consistent scheduler content", "evidence": "a long post about schedulers"}]}`}
	agent := NewAuthorityAgent()

	report := agent.Run(context.Background(), testCorpus(), testFingerprint(), DefaultConfig(types.AgentAuthority), gen)

	assert.False(t, report.Errored())
	assert.Equal(t, types.AgentAuthority, report.Kind)
	assert.Equal(t, 82, report.Score)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "Deep expertise", report.Findings[0].Title)
}

func TestLLMAgent_MalformedOutputIsErroredReport(t *testing.T) {
	gen := &fakeGenerator{response: `sorry, I cannot answer that`}
	agent := NewContentAgent()

	report := agent.Run(context.Background(), testCorpus(), testFingerprint(), DefaultConfig(types.AgentContent), gen)

	assert.True(t, report.Errored())
	assert.Equal(t, types.AgentContent, report.Kind)
	assert.Zero(t, report.Score)
}

func TestLLMAgent_SchemaViolationIsErroredReport(t *testing.T) {
	gen := &fakeGenerator{response: `{"score": 150, "findings": []}`}
	agent := NewCampaignAgent()

	report := agent.Run(context.Background(), testCorpus(), testFingerprint(), DefaultConfig(types.AgentCampaign), gen)
	assert.True(t, report.Errored())
}

func TestLLMAgent_GenerationErrorIsErroredReport(t *testing.T) {
	gen := &fakeGenerator{err: &llm.GenerationError{Message: "quota exhausted"}}
	agent := NewAuthorityAgent()

	report := agent.Run(context.Background(), testCorpus(), testFingerprint(), DefaultConfig(types.AgentAuthority), gen)
	assert.True(t, report.Errored())
	assert.Contains(t, report.Error, "quota exhausted")
}

func TestLLMAgent_TimeoutIsErroredReport(t *testing.T) {
	gen := &fakeGenerator{
		response: `{"score": 50, "findings": []}`,
		delay:    200 * time.Millisecond,
	}
	cfg := DefaultConfig(types.AgentAuthority)
	cfg.Timeout = 10 * time.Millisecond

	report := NewAuthorityAgent().Run(context.Background(), testCorpus(), testFingerprint(), cfg, gen)
	assert.True(t, report.Errored())
}

func TestLLMAgent_FindingsCapped(t *testing.T) {
	gen := &fakeGenerator{response: `{"score": 60, "findings": [
		{"title": "a", "detail": "1"},
		{"title": "b", "detail": "2"},
		{"title": "c", "detail": "3"}
	]}`}
	cfg := DefaultConfig(types.AgentContent)
	cfg.MaxFindings = 2

	report := NewContentAgent().Run(context.Background(), testCorpus(), testFingerprint(), cfg, gen)
	assert.False(t, report.Errored())
	assert.Len(t, report.Findings, 2)
}

func TestLLMAgent_PromptContainsCorpusAndFingerprint(t *testing.T) {
	agent := &llmAgent{kind: types.AgentAuthority, promptKey: "authority"}
	prompt := agent.buildPrompt(testCorpus(), testFingerprint(), DefaultConfig(types.AgentAuthority))

	assert.Contains(t, prompt, "alice")
	assert.Contains(t, prompt, "shipping the release today")
	assert.Contains(t, prompt, "conversational register")
}
