package ratelimit

import (
	"context"
	"sync"
	"time"
)

const (
	ActionSendMessage  = "send_message"
	ActionSendCard     = "send_card"
	ActionSubmitReport = "submit_report"
	ActionCreateItem   = "create_item"
	ActionAPIRequest   = "api_request"
)

// Policy describes a bucket: MaxTokens burst, refilled by one token every
// Interval.
type Policy struct {
	MaxTokens int
	Interval  time.Duration
}

// DefaultPolicies are the limits used by the API server.
func DefaultPolicies() map[string]Policy {
	return map[string]Policy{
		// 10 messages per minute
		ActionSendMessage: {MaxTokens: 10, Interval: 6 * time.Second},
		// 5 cards per minute
		ActionSendCard: {MaxTokens: 5, Interval: 12 * time.Second},
		// 5 reports per hour
		ActionSubmitReport: {MaxTokens: 5, Interval: 12 * time.Minute},
		// 10 listings per hour
		ActionCreateItem: {MaxTokens: 10, Interval: 6 * time.Minute},
		// 120 requests per minute per client address
		ActionAPIRequest: {MaxTokens: 120, Interval: 500 * time.Millisecond},
	}
}

var defaultPolicy = Policy{MaxTokens: 20, Interval: 3 * time.Second}

// TokenBucket represents a token bucket for rate limiting
type TokenBucket struct {
	tokens     int
	maxTokens  int
	refillTime time.Duration
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
}

func NewTokenBucket(maxTokens int, refillTime time.Duration) *TokenBucket {
	now := time.Now()
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillTime: refillTime,
		lastRefill: now,
		lastUsed:   now,
	}
}

// Allow consumes a token if one is available. Otherwise it returns how long
// until the next refill.
func (tb *TokenBucket) Allow() (bool, time.Duration) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	tb.lastUsed = now

	refills := int(now.Sub(tb.lastRefill) / tb.refillTime)
	if refills > 0 {
		tb.tokens += refills
		if tb.tokens > tb.maxTokens {
			tb.tokens = tb.maxTokens
		}
		tb.lastRefill = tb.lastRefill.Add(time.Duration(refills) * tb.refillTime)
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true, 0
	}
	return false, tb.lastRefill.Add(tb.refillTime).Sub(now)
}

func (tb *TokenBucket) idleSince(t time.Time) bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()
	return tb.lastUsed.Before(t)
}

// RateLimiter keeps one bucket per user and action.
type RateLimiter struct {
	policies map[string]Policy
	buckets  map[string]*TokenBucket
	mutex    sync.RWMutex
}

func NewRateLimiter(policies map[string]Policy) *RateLimiter {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &RateLimiter{
		policies: policies,
		buckets:  make(map[string]*TokenBucket),
	}
}

func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	key := userID + ":" + action

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if !exists {
		rl.mutex.Lock()
		// Double-check pattern
		if bucket, exists = rl.buckets[key]; !exists {
			policy, ok := rl.policies[action]
			if !ok {
				policy = defaultPolicy
			}
			bucket = NewTokenBucket(policy.MaxTokens, policy.Interval)
			rl.buckets[key] = bucket
		}
		rl.mutex.Unlock()
	}

	return bucket.Allow()
}

// Cleanup drops buckets not used for an hour.
func (rl *RateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-time.Hour)
	for key, bucket := range rl.buckets {
		if bucket.idleSince(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine runs Cleanup every 30 minutes until ctx is done.
func (rl *RateLimiter) StartCleanupRoutine(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Cleanup()
			}
		}
	}()
}
