package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_BurstThenLimited(t *testing.T) {
	l := NewLimiter(Config{
		Enabled: true,
		Rules: []Rule{
			{Method: "POST", PathPrefix: "/api/reports/", Limit: 10, Window: time.Hour, Burst: 2},
		},
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	assert.True(t, l.Allow("1.2.3.4", "POST", "/api/reports/alice").Allowed)
	assert.True(t, l.Allow("1.2.3.4", "POST", "/api/reports/alice").Allowed)

	info := l.Allow("1.2.3.4", "POST", "/api/reports/alice")
	assert.False(t, info.Allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiter_ClientsIndependent(t *testing.T) {
	l := NewLimiter(Config{
		Enabled: true,
		Rules: []Rule{
			{Method: "POST", PathPrefix: "/api/reports/", Limit: 1, Window: time.Hour, Burst: 1},
		},
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
	})
	defer l.Stop()

	assert.True(t, l.Allow("1.1.1.1", "POST", "/api/reports/alice").Allowed)
	assert.False(t, l.Allow("1.1.1.1", "POST", "/api/reports/bob").Allowed)
	assert.True(t, l.Allow("2.2.2.2", "POST", "/api/reports/alice").Allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l := NewLimiter(Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer l.Stop()

	for i := 0; i < 20; i++ {
		assert.True(t, l.Allow("1.2.3.4", "GET", "/health").Allowed)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(Config{Enabled: false})
	for i := 0; i < 50; i++ {
		assert.True(t, l.Allow("1.2.3.4", "POST", "/api/reports/alice").Allowed)
	}
}

func TestLimiter_DropIdle(t *testing.T) {
	l := NewLimiter(Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()

	l.Allow("1.2.3.4", "GET", "/api/reports/alice")
	assert.Len(t, l.buckets, 1)

	l.dropIdle(time.Now().Add(time.Second))
	assert.Empty(t, l.buckets)
}
