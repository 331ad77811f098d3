package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*MemoryStore, *clock) {
	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = c.Now
	return s, c
}

func TestMemoryStore_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()

	require.NoError(t, s.Revoke(ctx, "tok-1", c.Now().Add(time.Hour)))

	revoked, err := s.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	c.Advance(time.Hour)
	revoked, err = s.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses with the token")
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_IgnoresExpiredTokens(t *testing.T) {
	s, c := newTestStore()
	require.NoError(t, s.Revoke(context.Background(), "old", c.Now().Add(-time.Minute)))
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStore_PrunesOnRevoke(t *testing.T) {
	ctx := context.Background()
	s, c := newTestStore()
	require.NoError(t, s.Revoke(ctx, "a", c.Now().Add(time.Minute)))
	require.NoError(t, s.Revoke(ctx, "b", c.Now().Add(time.Hour)))

	c.Advance(2 * time.Minute)
	require.NoError(t, s.Revoke(ctx, "c", c.Now().Add(time.Hour)))
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			assert.NoError(t, s.Revoke(ctx, id, time.Now().Add(time.Hour)))
			revoked, err := s.IsRevoked(ctx, id)
			assert.NoError(t, err)
			assert.True(t, revoked)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
}

func TestRevokedKey(t *testing.T) {
	assert.Equal(t, "session:revoked:abc", revokedKey("abc"))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not a url")
	assert.ErrorContains(t, err, "invalid REDIS_URL")
}
