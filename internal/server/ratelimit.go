package server

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter applies a per-client token bucket to the API routes.
type RateLimiter struct {
	rps     rate.Limit
	burst   int
	buckets map[string]*clientBucket
	mu      sync.RWMutex
}

type clientBucket struct {
	limiter *rate.Limiter

	// lastSeen holds a unix-nano timestamp, stored atomically so the
	// read-locked fast path in getBucket never races with cleanup.
	lastSeen atomic.Int64
}

func (b *clientBucket) touch() {
	b.lastSeen.Store(time.Now().UnixNano())
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerSec, burst int) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(requestsPerSec),
		burst:   burst,
		buckets: make(map[string]*clientBucket),
	}
}

// Allow checks if a request from the given client IP is allowed
func (r *RateLimiter) Allow(clientIP string) bool {
	return r.getBucket(clientIP).limiter.Allow()
}

// getBucket gets or creates a token bucket for a client IP
func (r *RateLimiter) getBucket(clientIP string) *clientBucket {
	r.mu.RLock()
	bucket, exists := r.buckets[clientIP]
	r.mu.RUnlock()

	if exists {
		bucket.touch()
		return bucket
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists := r.buckets[clientIP]; exists {
		bucket.touch()
		return bucket
	}

	bucket = &clientBucket{limiter: rate.NewLimiter(r.rps, r.burst)}
	bucket.touch()
	r.buckets[clientIP] = bucket
	return bucket
}

// CleanupOldBuckets removes old, unused buckets to prevent memory leaks
func (r *RateLimiter) CleanupOldBuckets() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-time.Hour).UnixNano()
	for ip, bucket := range r.buckets {
		if bucket.lastSeen.Load() < cutoff {
			delete(r.buckets, ip)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up old buckets
func (r *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			r.CleanupOldBuckets()
		}
	}()
}
