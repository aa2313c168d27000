package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgentReport_Errored(t *testing.T) {
	ok := AgentReport{Kind: AgentContent, Score: 72}
	assert.False(t, ok.Errored())

	failed := AgentReport{Kind: AgentCampaign, Error: "generation timed out"}
	assert.True(t, failed.Errored())

	// Must be callable on a map entry without binding it to a local.
	agents := map[AgentKind]AgentReport{
		AgentCampaign: failed,
	}
	assert.True(t, agents[AgentCampaign].Errored())
}

func TestUnifiedReport_Succeeded_SkipsErrored(t *testing.T) {
	report := UnifiedReport{
		Handle: "alice",
		Agents: map[AgentKind]AgentReport{
			AgentAuthority: {Kind: AgentAuthority, Score: 80},
			AgentCampaign:  {Kind: AgentCampaign, Error: "timeout"},
			AgentContent:   {Kind: AgentContent, Score: 60},
		},
		GeneratedAt: time.Now(),
	}

	ok := report.Succeeded()
	assert.Len(t, ok, 2)
	for _, r := range ok {
		assert.False(t, r.Errored())
	}
}

func TestSourcePriority_Order(t *testing.T) {
	assert.Less(t, SourcePriority(SourceTimeline), SourcePriority(SourceWebSearch))
	assert.Less(t, SourcePriority(SourceWebSearch), SourcePriority(SourceVideo))
	assert.Less(t, SourcePriority(SourceVideo), SourcePriority(SourceReddit))
	assert.Equal(t, len(AllSources()), SourcePriority(SourceKind("unknown")))
}

func TestEngagement_Total_DiscountsViews(t *testing.T) {
	e := Engagement{Likes: 10, Replies: 5, Shares: 2, Views: 1000}
	assert.Equal(t, 27, e.Total())
}

func TestCorpus_JoinedText_RespectsLimit(t *testing.T) {
	c := Corpus{Items: []RawSignal{
		{Text: "first item"},
		{Text: "second item"},
	}}
	assert.Equal(t, "first item", c.JoinedText(12))
	assert.Equal(t, "first item\nsecond item", c.JoinedText(0))
}
