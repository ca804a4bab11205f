package cache

import (
	"sync"
	"testing"
	"time"

	"gomarket/internal/auth/domain/model"
	"gomarket/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	current := time.Now()
	c := New(5*time.Minute, time.Minute, logger.NewLogger())
	c.now = func() time.Time { return current }
	return c, &current
}

func record(id string) *model.SessionRecord {
	now := time.Now().UnixMilli()
	return &model.SessionRecord{
		SessionID:    id,
		UserID:       "user-1",
		Email:        "user@example.com",
		Role:         model.RoleUser,
		CreatedAt:    now,
		ExpiresAt:    now + int64(7*24*time.Hour/time.Millisecond),
		LastActivity: now,
	}
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	rec := record("s1")
	c.Set("s1", rec)

	got, cachedAt, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, rec.UserID, got.UserID)
	assert.NotZero(t, cachedAt)

	_, _, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_EntriesAreCopies(t *testing.T) {
	c, _ := newTestCache(t)
	rec := record("s1")
	c.Set("s1", rec)

	// Mutating the original must not leak into the cache.
	rec.UserID = "mutated"
	got, _, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)

	// Mutating a returned copy must not leak back either.
	got.Email = "evil@example.com"
	again, _, ok := c.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "user@example.com", again.Email)
}

func TestCache_TTLExpiryOnRead(t *testing.T) {
	c, current := newTestCache(t)
	c.Set("s1", record("s1"))

	*current = current.Add(5*time.Minute + time.Second)

	_, _, ok := c.Get("s1")
	assert.False(t, ok, "stale entry must read as absent before any sweep")
	assert.Equal(t, 1, c.Len(), "entry remains physically present until swept")
}

func TestCache_SweepOnce(t *testing.T) {
	c, current := newTestCache(t)
	c.Set("old", record("old"))

	*current = current.Add(3 * time.Minute)
	c.Set("fresh", record("fresh"))

	*current = current.Add(2*time.Minute + time.Second)

	removed := c.SweepOnce()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, _, ok := c.Get("fresh")
	assert.True(t, ok)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	c.Set("s1", record("s1"))
	c.Delete("s1")
	c.Delete("s1") // absent delete is a no-op

	_, _, ok := c.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCache_StartStop(t *testing.T) {
	c := New(5*time.Minute, 10*time.Millisecond, logger.NewLogger())
	c.Start()
	c.Start() // second Start is a no-op
	time.Sleep(30 * time.Millisecond)
	c.Stop()
	c.Stop() // idempotent
}

func TestCache_StopWithoutStart(t *testing.T) {
	c := New(time.Minute, time.Minute, logger.NewLogger())
	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked for a cache whose janitor never started")
	}
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("shared", record("shared"))
				c.Get("shared")
				c.SweepOnce()
			}
		}(i)
	}
	wg.Wait()
}
