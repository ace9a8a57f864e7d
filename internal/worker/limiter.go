package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles gateway requests per host. Every cascade walks the same
// ordered gateway list, so without per-host budgets the preferred gateway
// absorbs one request per claim while the fallbacks sit idle.
type Limiter struct {
	mu     sync.RWMutex
	byHost map[string]*rate.Limiter
	limit  rate.Limit
	burst  int
}

// NewLimiter creates a limiter granting each host requestsPerSecond with the
// given burst. A non-positive burst defaults to 5.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		byHost: make(map[string]*rate.Limiter),
		limit:  rate.Limit(requestsPerSecond),
		burst:  burst,
	}
}

// Wait blocks until the host of rawURL has budget for one request, or the
// context is done.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	return l.hostLimiter(parsed.Host).Wait(ctx)
}

func (l *Limiter) hostLimiter(host string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.byHost[host]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.byHost[host]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.limit, l.burst)
	l.byHost[host] = lim
	return lim
}
