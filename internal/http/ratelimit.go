package http

import (
	"sync"
	"time"
)

// mutationLimiter caps how many mutating requests a single client IP
// may issue inside a fixed window. Reads are never limited; the limit
// and window come from the server that owns the limiter.
type mutationLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	seen map[string]*clientWindow

	done chan struct{}
	once sync.Once
}

type clientWindow struct {
	since time.Time
	count int
}

func newMutationLimiter(limit int, window time.Duration) *mutationLimiter {
	l := &mutationLimiter{
		limit:  limit,
		window: window,
		seen:   make(map[string]*clientWindow),
		done:   make(chan struct{}),
	}
	go l.evictLoop()
	return l
}

func (l *mutationLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.seen[ip]
	if !ok || now.Sub(w.since) > l.window {
		l.seen[ip] = &clientWindow{since: now, count: 1}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// evictLoop periodically drops windows that expired long ago so the
// map does not grow with one-off clients.
func (l *mutationLimiter) evictLoop() {
	ticker := time.NewTicker(5 * l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * l.window)
			l.mu.Lock()
			for ip, w := range l.seen {
				if w.since.Before(cutoff) {
					delete(l.seen, ip)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

func (l *mutationLimiter) stop() {
	l.once.Do(func() { close(l.done) })
}
