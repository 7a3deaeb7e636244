package server

import (
	"fmt"
	"sync"
	"testing"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Error("requests within burst should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request over burst should be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("buckets must be per-client")
	}
}

func TestRateLimiterConcurrentCleanup(t *testing.T) {
	rl := NewRateLimiter(1000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				rl.Allow(fmt.Sprintf("192.0.2.%d", id))
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 200; j++ {
			rl.CleanupOldBuckets()
		}
	}()
	wg.Wait()
}
