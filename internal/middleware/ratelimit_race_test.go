package middleware

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Run with -race to exercise the limiter lock.
func TestRateLimiter_ConcurrentClients(t *testing.T) {
	const (
		clients  = 25
		requests = 8
	)
	limiter := NewRateLimiter(requests, time.Minute, "race")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		rejected int
	)
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(client int) {
			defer wg.Done()
			ip := fmt.Sprintf("10.0.0.%d", client)
			// One request over the budget per client
			for j := 0; j <= requests; j++ {
				if ok, _ := limiter.isAllowed(ip); !ok {
					mu.Lock()
					rejected++
					mu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()

	if rejected != clients {
		t.Errorf("Expected exactly one rejection per client (%d), got %d", clients, rejected)
	}
}

func TestRateLimiter_SharedClientDuringCleanup(t *testing.T) {
	limiter := NewRateLimiter(3, 20*time.Millisecond, "race-cleanup")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 30; j++ {
				limiter.isAllowed("192.168.1.1")
				if j%10 == 0 {
					time.Sleep(5 * time.Millisecond)
				}
			}
		}()
	}
	wg.Wait()
}

func TestRateLimiter_FixedWindowResets(t *testing.T) {
	clock := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, time.Minute, "window")
	limiter.now = func() time.Time { return clock }

	for i := 0; i < 2; i++ {
		if ok, _ := limiter.isAllowed("ip"); !ok {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}

	// Steady traffic inside the window does not extend it
	clock = clock.Add(40 * time.Second)
	if ok, _ := limiter.isAllowed("ip"); ok {
		t.Fatal("Expected the third request in the window to be rejected")
	}
	if got := limiter.retryAfter("ip"); got != 20 {
		t.Errorf("Expected retry after 20s, got %d", got)
	}

	clock = clock.Add(20 * time.Second)
	if ok, count := limiter.isAllowed("ip"); !ok || count != 1 {
		t.Errorf("Expected a fresh window, got allowed=%v count=%d", ok, count)
	}
}
