package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per client id and forgets buckets that have
// been idle for longer than the expiry. Ids are whatever the caller keys on,
// the API uses the client IP.
type Limiter struct {
	limit  rate.Limit
	burst  int
	expiry time.Duration

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewLimiter builds a limiter allowing limitRPS requests per second with the
// given burst. Idle clients are swept after expiry minutes.
func NewLimiter(burst int, expiry int, limitRPS float64) *Limiter {
	l := &Limiter{
		limit:   rate.Limit(limitRPS),
		burst:   burst,
		expiry:  time.Duration(expiry) * time.Minute,
		clients: make(map[string]*client),
	}
	go l.sweep()
	return l
}

// Check reports whether the client may proceed, consuming one token.
func (l *Limiter) Check(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[id]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[id] = c
	}
	c.lastSeen = time.Now()

	return c.bucket.Allow()
}

func (l *Limiter) sweep() {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()

	for range tick.C {
		l.mu.Lock()
		for id, c := range l.clients {
			if time.Since(c.lastSeen) > l.expiry {
				delete(l.clients, id)
			}
		}
		l.mu.Unlock()
	}
}

// Every converts a per-request interval into the requests-per-second rate
// NewLimiter expects.
func Every(interval time.Duration) float64 {
	return float64(rate.Every(interval))
}
