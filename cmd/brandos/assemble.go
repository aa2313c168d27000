package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BAWSA3/brandos/internal/agents"
	"github.com/BAWSA3/brandos/internal/cache"
	"github.com/BAWSA3/brandos/internal/conductor"
	"github.com/BAWSA3/brandos/internal/config"
	"github.com/BAWSA3/brandos/internal/llm"
	"github.com/BAWSA3/brandos/internal/sources"
	"github.com/BAWSA3/brandos/internal/store"
)

// assembly holds the wired application graph and its cleanup.
type assembly struct {
	conductor *conductor.Conductor
	db        *store.DB
	close     func()
}

// assemble builds the conductor from configuration: one connector per
// configured source, the agent registry, the Gemini client, the cache
// (Redis when configured, in-memory otherwise), and the optional
// Postgres sink.
func assemble(ctx context.Context, cfg config.Config, logger *zap.Logger) (*assembly, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or gemini_api_key in config)")
	}

	gen, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	connectors, err := buildConnectors(ctx, cfg, logger)
	if err != nil {
		gen.Close()
		return nil, err
	}
	var reportCache cache.Store
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			gen.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		reportCache = redisCache
	} else {
		reportCache = cache.NewMemory()
	}

	var db *store.DB
	var sink conductor.Sink
	if cfg.DatabaseURL != "" {
		db, err = store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			gen.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sink = db
	}

	opts := conductor.DefaultOptions()
	opts.MaxConnectorConcurrency = nonZero(cfg.MaxConnectorConcurrency, opts.MaxConnectorConcurrency)
	opts.MaxAgentConcurrency = nonZero(cfg.MaxAgentConcurrency, opts.MaxAgentConcurrency)
	opts.SignalLimit = nonZero(cfg.SignalLimit, opts.SignalLimit)
	opts.MinCorpusSize = nonZero(cfg.MinCorpusSize, opts.MinCorpusSize)
	opts.CacheTTL = config.Duration(cfg.CacheTTL, opts.CacheTTL)
	opts.FetchTimeout = config.Duration(cfg.FetchTimeout, opts.FetchTimeout)
	opts.AgentTimeout = config.Duration(cfg.AgentTimeout, opts.AgentTimeout)

	cond := conductor.New(connectors, agents.Registry(), gen, reportCache, sink, opts, logger)

	return &assembly{
		conductor: cond,
		db:        db,
		close: func() {
			gen.Close()
			if db != nil {
				db.Close()
			}
		},
	}, nil
}

func buildConnectors(ctx context.Context, cfg config.Config, logger *zap.Logger) ([]sources.Connector, error) {
	var connectors []sources.Connector

	if cfg.TimelineBaseURL != "" {
		opts := []sources.TimelineOption{}
		if cfg.UseBrowser {
			opts = append(opts, sources.WithBrowserFallback(logger))
		}
		connectors = append(connectors, sources.NewTimelineConnector(cfg.TimelineBaseURL, opts...))
	}

	if cfg.SearchAPIKey != "" && cfg.SearchEngineID != "" {
		search, err := sources.NewSearchConnector(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			return nil, fmt.Errorf("failed to create search connector: %w", err)
		}
		connectors = append(connectors, search)
	}

	if cfg.YouTubeAPIKey != "" {
		video, err := sources.NewVideoConnector(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create video connector: %w", err)
		}
		connectors = append(connectors, video)
	}

	redditOpts := []sources.RedditOption{}
	if cfg.RedditBaseURL != "" {
		redditOpts = append(redditOpts, sources.WithRedditBaseURL(cfg.RedditBaseURL))
	}
	connectors = append(connectors, sources.NewRedditConnector(redditOpts...))

	return connectors, nil
}

func nonZero(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
