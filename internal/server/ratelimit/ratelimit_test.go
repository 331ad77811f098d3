package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// frozen pins the limiter clock so token counts are exact.
func frozen(l *Limiter, at time.Time) *time.Time {
	now := at
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/listings", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
		assert.Equal(t, DefaultTier, info.Tier)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/listings", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))
	assert.True(t, info.ResetTime.After(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 60; i++ {
		allowed, _ := limiter.Allow("c", "/clients", "GET")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("c", "/clients", "GET")
	require.False(t, allowed)

	*now = now.Add(time.Second)
	allowed, _ = limiter.Allow("c", "/clients", "GET")
	assert.True(t, allowed, "one token refills per second")
	allowed, _ = limiter.Allow("c", "/clients", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:      true,
		DefaultLimit: 1,
		Whitelist:    map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/listings", "GET")
		assert.True(t, allowed)
	}
	assert.Equal(t, 0, limiter.Len())
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:      true,
		DefaultLimit: 100,
		Blacklist:    map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	allowed, info := limiter.Allow("10.0.0.2", "/listings", "GET")
	assert.False(t, allowed)
	assert.Equal(t, "blacklist", info.Tier)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false, DefaultLimit: 1})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("c", "/valuations", "POST")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointTiers(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()
	frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	// Matching different clients shares one llm bucket per caller.
	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("agent", fmt.Sprintf("/clients/c%d/matches", i), "POST")
		require.True(t, allowed, "burst request %d", i+1)
		assert.Equal(t, "llm", info.Tier)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, info := limiter.Allow("agent", "/clients/c9/matches", "POST")
	assert.False(t, allowed)
	assert.Equal(t, "llm", info.Tier)
	assert.Equal(t, 2*time.Minute, info.RetryAfter.Round(time.Second))

	// Valuations have their own bucket in the same tier.
	allowed, _ = limiter.Allow("agent", "/valuations", "POST")
	assert.True(t, allowed)

	// Reads are untouched.
	allowed, info = limiter.Allow("agent", "/clients/c1", "GET")
	assert.True(t, allowed)
	assert.Equal(t, DefaultTier, info.Tier)

	// Another caller is independent.
	allowed, _ = limiter.Allow("other", "/clients/c1/matches", "POST")
	assert.True(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		assert.True(t, allowed)
		allowed, _ = limiter.Allow("c", "/metrics", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()
	frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("c", "/listings", "GET"); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowedCount.Load())
}

func TestLimiter_DropIdle(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()
	now := frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/listings", "GET")
	}
	require.Equal(t, 10, limiter.Len())

	*now = now.Add(45 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/listings", "GET")
	}

	limiter.dropIdle(now.Add(30 * time.Minute))
	assert.Equal(t, 5, limiter.Len())
}

func TestLimiter_CleanupGoroutineStops(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    10,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Millisecond,
	})
	limiter.Allow("c", "/listings", "GET")
	time.Sleep(20 * time.Millisecond)

	limiter.Stop()
	limiter.Stop()
	assert.Equal(t, 1, limiter.Len())
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Tier: "write", Path: "/burst", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		},
	})
	defer limiter.Stop()
	frozen(limiter, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow("c", "/burst", "POST")
		assert.True(t, allowed, "burst request %d", i+1)
	}
	allowed, _ := limiter.Allow("c", "/burst", "POST")
	assert.False(t, allowed)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("c", "/listings", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantTier     string
		wantPath     string
	}{
		{"/clients/3f1c/matches", "POST", "llm", "/clients/*/matches"},
		{"/valuations", "POST", "llm", "/valuations"},
		{"/listings/9a/exports", "POST", "export", "/listings/*/exports"},
		{"/listings/9a/images", "POST", "upload", "/listings/*/images"},
		{"/listings/9a/status", "POST", "write", "/listings/"},
		{"/listings", "POST", "write", "/listings"},
		{"/clients/3f1c/notes", "POST", "write", "/clients/"},
		{"/auth/login", "POST", "auth", "/auth/login"},
		{"/health", "GET", "unlimited", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantTier, got.Tier)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	assert.Nil(t, MatchEndpoint("/listings/9a", "GET", configs))
	assert.Nil(t, MatchEndpoint("/clients//matches", "POST", []EndpointConfig{{Path: "/clients/*/matches", Method: "POST"}}))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "250")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_LLM_PER_HOUR", "12")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 250, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.Empty(t, cfg.Blacklist)

	got := MatchEndpoint("/valuations", "POST", cfg.EndpointConfigs)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Limit)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
