// Package ratelimit provides per-client request limiting for the API
// using token buckets.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// bucket is a token bucket refilled at a steady rate.
type bucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(float64(b.capacity), b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillRate)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

func (b *bucket) retryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tokens >= 1.0 {
		return 0
	}
	return time.Duration((1.0 - b.tokens) / b.refillRate * float64(time.Second))
}

// Info describes the outcome of a limiter check.
type Info struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Limiter applies per-client, per-rule token buckets. Analysis runs are
// expensive (several LLM calls each) so report creation gets a much
// tighter budget than reads.
type Limiter struct {
	mu         sync.RWMutex
	buckets    map[string]*bucket
	lastAccess map[string]time.Time
	config     Config

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
}

// Rule limits one route class, matched by method and path prefix.
type Rule struct {
	Method     string
	PathPrefix string
	Limit      int // requests per Window
	Window     time.Duration
	Burst      int // defaults to Limit
}

// Config holds limiter tuning.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Rules           []Rule
}

// DefaultConfig returns the standard limits for the report API.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DefaultLimit:    300,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Rules: []Rule{
			{Method: "POST", PathPrefix: "/api/reports/", Limit: 10, Window: time.Hour, Burst: 3},
			{Method: "GET", PathPrefix: "/api/reports/", Limit: 120, Window: time.Minute},
		},
	}
}

// NewLimiter builds a limiter and starts its idle bucket cleanup.
func NewLimiter(config Config) *Limiter {
	l := &Limiter{
		buckets:    make(map[string]*bucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
	}
	if config.Enabled && config.CleanupInterval > 0 {
		l.cleanupTicker = time.NewTicker(config.CleanupInterval)
		l.cleanupStop = make(chan struct{})
		go l.cleanupLoop()
	}
	return l
}

// Allow checks whether a request from clientID for the given method and
// path may proceed.
func (l *Limiter) Allow(clientID, method, path string) Info {
	if !l.config.Enabled {
		return Info{Allowed: true}
	}
	if path == "/health" && method == "GET" {
		return Info{Allowed: true}
	}

	rule := l.match(method, path)
	key := clientID + ":" + rule.Method + ":" + rule.PathPrefix
	b := l.getBucket(key, rule)

	l.mu.Lock()
	l.lastAccess[key] = time.Now()
	l.mu.Unlock()

	if b.allow() {
		return Info{Allowed: true, Limit: rule.Limit}
	}
	return Info{Allowed: false, Limit: rule.Limit, RetryAfter: b.retryAfter()}
}

func (l *Limiter) match(method, path string) Rule {
	for _, rule := range l.config.Rules {
		if rule.Method == method && strings.HasPrefix(path, rule.PathPrefix) {
			return rule
		}
	}
	return Rule{Method: method, PathPrefix: "", Limit: l.config.DefaultLimit, Window: l.config.DefaultWindow}
}

func (l *Limiter) getBucket(key string, rule Rule) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	created := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.buckets[key]; ok {
		return existing
	}
	l.buckets[key] = created
	return created
}

func (l *Limiter) cleanupLoop() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.dropIdle(time.Now().Add(-1 * time.Hour))
		case <-l.cleanupStop:
			return
		}
	}
}

func (l *Limiter) dropIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop halts the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
