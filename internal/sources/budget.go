package sources

import (
	"sync"
	"time"
)

// Budget bounds how many upstream requests a connector may issue within a
// rolling window, using a token bucket. When the budget is exhausted the
// connector fails fast with RateLimitError instead of queueing.
type Budget struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewBudget creates a budget of capacity requests per window.
func NewBudget(capacity int, window time.Duration) *Budget {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Budget{
		capacity:   capacity,
		refillRate: float64(capacity) / window.Seconds(),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow checks whether a request token is available and consumes it if so.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter returns how long until the next token becomes available.
func (b *Budget) RetryAfter() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if b.tokens >= 1.0 {
		return 0
	}
	missing := 1.0 - b.tokens
	return time.Duration(missing / b.refillRate * float64(time.Second))
}

// refill adds tokens for the time elapsed since the last refill.
// Caller must hold b.mu.
func (b *Budget) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(float64(b.capacity), b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now
}
