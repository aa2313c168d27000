package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BAWSA3/brandos/internal/agents"
	"github.com/BAWSA3/brandos/internal/cache"
	"github.com/BAWSA3/brandos/internal/conductor"
	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/sources"
	"github.com/BAWSA3/brandos/internal/types"
)

type stubConnector struct {
	delay time.Duration
}

func (s *stubConnector) Kind() types.SourceKind { return types.SourceTimeline }

func (s *stubConnector) Fetch(ctx context.Context, handle types.Handle, limit int) ([]types.RawSignal, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, &sources.Unavailable{Source: types.SourceTimeline, Cause: ctx.Err()}
		}
	}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	out := make([]types.RawSignal, 0, 6)
	for i := 0; i < 6; i++ {
		out = append(out, types.RawSignal{
			Source:     types.SourceTimeline,
			Handle:     handle,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			Text:       fmt.Sprintf("Announcing milestone %d for the team today.", i),
			Engagement: types.Engagement{Likes: 5},
		})
	}
	return out, nil
}

type stubAgent struct {
	kind  types.AgentKind
	score int
}

func (s *stubAgent) Kind() types.AgentKind { return s.kind }

func (s *stubAgent) Run(ctx context.Context, corpus *types.Corpus, fp *types.Fingerprint, cfg agents.Config, gen llm.Client) types.AgentReport {
	return types.AgentReport{Kind: s.kind, Score: s.score, GeneratedAt: time.Now().UTC()}
}

func testServer(t *testing.T, connectorDelay time.Duration) *Server {
	t.Helper()
	opts := conductor.DefaultOptions()
	opts.FetchTimeout = 2 * time.Second
	opts.AgentTimeout = 2 * time.Second
	cond := conductor.New(
		[]sources.Connector{&stubConnector{delay: connectorDelay}},
		[]agents.Agent{
			&stubAgent{kind: types.AgentAuthority, score: 80},
			&stubAgent{kind: types.AgentAnalytics, score: 60},
		},
		nil, cache.NewMemory(), nil, opts, nil)
	return New(Config{Port: 0}, cond, nil, nil)
}

func TestHealth(t *testing.T) {
	s := testServer(t, 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateReport_InvalidHandle(t *testing.T) {
	s := testServer(t, 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/reports/bad%20handle", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReport_NotFound(t *testing.T) {
	s := testServer(t, 0)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/nobody", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateThenGetReport(t *testing.T) {
	s := testServer(t, 0)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/reports/Alice", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created CreateReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice", created.Handle)
	assert.NotEmpty(t, created.RunID)

	// Poll until the background run lands in the cache.
	var report types.UnifiedReport
	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/alice", nil))
		if rec.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(rec.Body.Bytes(), &report) == nil
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, types.Handle("alice"), report.Handle)
	require.NotNil(t, report.OverallScore)
	assert.InDelta(t, 70.0, *report.OverallScore, 0.001)
}

func TestGetReport_InProgress(t *testing.T) {
	s := testServer(t, 300*time.Millisecond)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/reports/alice", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/alice", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "in_progress", status.Status)
}

func TestStreamReport(t *testing.T) {
	s := testServer(t, 50*time.Millisecond)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/alice/stream", nil))

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: state")
	assert.Contains(t, body, "event: agent")
	assert.Contains(t, body, "event: complete")
	assert.True(t, strings.Index(body, "event: state") < strings.Index(body, "event: complete"))
}

func TestStreamReport_CachedReportShortCircuits(t *testing.T) {
	s := testServer(t, 0)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/alice/stream", nil))
	require.Contains(t, rec.Body.String(), "event: complete")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports/alice/stream", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "event: complete")
	assert.NotContains(t, body, "event: state")
}

func TestRateLimit(t *testing.T) {
	opts := conductor.DefaultOptions()
	cond := conductor.New(nil, nil, nil, nil, nil, opts, nil)
	cfg := Config{Port: 0}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.DefaultLimit = 2
	cfg.RateLimit.DefaultWindow = time.Hour
	s := New(cfg, cond, nil, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/reports/alice", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		s.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.NotEqual(t, http.StatusTooManyRequests, codes[0])
}
