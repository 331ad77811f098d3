// Package ratelimit limits requests per client and endpoint tier using
// golang.org/x/time/rate token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultTier names the limit applied to routes without an endpoint config.
const DefaultTier = "default"

// idleTTL is how long an unused limiter is kept before cleanup drops it.
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type entry struct {
	limiter  *rate.Limiter
	limit    int
	lastSeen time.Time
}

// Limiter keeps one token bucket per client and matched endpoint.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration. A nil
// config enables a lenient default of 1000 requests per minute.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}
	if config.DefaultWindow <= 0 {
		config.DefaultWindow = time.Minute
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		entries: make(map[string]*entry),
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.stop = make(chan struct{})
		l.done = make(chan struct{})
		go l.cleanup(config.CleanupInterval)
	}
	return l
}

// Allow reports whether a request from clientID to endpoint may proceed and
// consumes a token when it does.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false, Tier: "blacklist"}
	}

	ec := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	key := clientID + "|" + DefaultTier
	if ec == nil {
		ec = &EndpointConfig{
			Tier:   DefaultTier,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	} else {
		key = clientID + "|" + ec.Method + " " + ec.Path
	}

	if ec.Limit <= 0 {
		return true, Info{Allowed: true, Tier: ec.Tier}
	}

	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: newBucket(ec), limit: ec.Limit}
		l.entries[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	allowed := e.limiter.AllowN(now, 1)
	tokens := e.limiter.TokensAt(now)

	info := Info{
		Allowed:   allowed,
		Tier:      ec.Tier,
		Limit:     e.limit,
		Remaining: max(0, int(math.Floor(tokens))),
		ResetTime: now.Add(refillTime(e.limiter, float64(e.limiter.Burst())-tokens)),
	}
	if !allowed {
		info.RetryAfter = refillTime(e.limiter, 1-tokens)
	}
	return allowed, info
}

// Len returns the number of tracked client buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	if l.stop == nil {
		return
	}
	l.stopOnce.Do(func() {
		close(l.stop)
		<-l.done
	})
}

func (l *Limiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		close(l.done)
	}()
	for {
		select {
		case <-ticker.C:
			l.dropIdle(l.now())
		case <-l.stop:
			return
		}
	}
}

// dropIdle removes buckets not used since idleTTL before now.
func (l *Limiter) dropIdle(now time.Time) {
	cutoff := now.Add(-idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

func newBucket(ec *EndpointConfig) *rate.Limiter {
	burst := ec.Burst
	if burst <= 0 {
		burst = ec.Limit
	}
	window := ec.Window
	if window <= 0 {
		window = time.Minute
	}
	every := rate.Limit(float64(ec.Limit) / window.Seconds())
	return rate.NewLimiter(every, burst)
}

// refillTime is how long the bucket needs to gain n tokens.
func refillTime(lim *rate.Limiter, n float64) time.Duration {
	if n <= 0 || lim.Limit() <= 0 {
		return 0
	}
	return time.Duration(n / float64(lim.Limit()) * float64(time.Second))
}
