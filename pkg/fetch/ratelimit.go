package fetch

import (
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RateLimiter spaces out requests per host. Callers Wait before a
// request and Touch after it; the limiter sleeps whenever the configured
// delay since the host's previous request has not elapsed yet.
type RateLimiter struct {
	lastRequest map[string]time.Time
	mu          sync.Mutex
	delay       time.Duration
	log         *logrus.Logger
}

// NewRateLimiter creates a RateLimiter enforcing delay between requests
// to the same host. A non-positive delay disables waiting entirely.
func NewRateLimiter(delay time.Duration, log *logrus.Logger) *RateLimiter {
	return &RateLimiter{
		lastRequest: make(map[string]time.Time),
		delay:       delay,
		log:         log,
	}
}

// Wait blocks until the host's politeness delay has passed. The sleep
// gets +/-10% jitter so multiple workers never fall into lockstep.
func (rl *RateLimiter) Wait(host string) {
	if rl.delay <= 0 {
		return
	}

	rl.mu.Lock()
	last, seen := rl.lastRequest[host]
	rl.mu.Unlock() // never sleep while holding the lock

	if !seen {
		return
	}

	remaining := rl.delay - time.Since(last)
	if remaining <= 0 {
		return
	}

	var jitter time.Duration
	if jitterRange := int64(remaining) / 5; jitterRange > 0 {
		jitter = time.Duration(rand.Int63n(jitterRange)) - remaining/10
	}
	sleep := remaining + jitter
	if sleep <= 0 {
		return
	}

	rl.log.WithFields(logrus.Fields{"host": host, "sleep": sleep}).Debug("Politeness delay")
	time.Sleep(sleep)
}

// Touch records now as the host's last request time. Call after every
// request attempt, successful or not.
func (rl *RateLimiter) Touch(host string) {
	rl.mu.Lock()
	rl.lastRequest[host] = time.Now()
	rl.mu.Unlock()
}
