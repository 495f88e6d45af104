package chefbook

import (
	"sync"
	"time"
)

// SaveLimiter rate-limits recipe saves per IP address over a sliding window.
type SaveLimiter struct {
	mu     sync.Mutex
	saves  map[string][]time.Time
	max    int
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewSaveLimiter creates a SaveLimiter that allows max saves per window.
func NewSaveLimiter(max int, window time.Duration) *SaveLimiter {
	l := &SaveLimiter{
		saves:  make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *SaveLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
		}
		cutoff := time.Now().Add(-l.window)
		l.mu.Lock()
		for ip := range l.saves {
			if kept := l.prune(ip, cutoff); len(kept) == 0 {
				delete(l.saves, ip)
			}
		}
		l.mu.Unlock()
	}
}

// prune must be called with l.mu held.
func (l *SaveLimiter) prune(ip string, cutoff time.Time) []time.Time {
	hits := l.saves[ip]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.saves[ip] = kept
	return kept
}

// Stop ends the cleanup goroutine.
func (l *SaveLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Allow checks if the IP is under the limit and records the save if so.
func (l *SaveLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prune(ip, time.Now().Add(-l.window))) >= l.max {
		return false
	}
	l.saves[ip] = append(l.saves[ip], time.Now())
	return true
}

// Remaining returns how many saves the IP has left in the current window.
func (l *SaveLimiter) Remaining(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.max - len(l.prune(ip, time.Now().Add(-l.window)))
	if n < 0 {
		return 0
	}
	return n
}
