package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "a", []byte("one"), 0))
	require.NoError(t, m.Set(ctx, "b", []byte("two"), 10*time.Second))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	got[0] = 'X'
	again, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), again, "callers must not mutate stored values")

	now = now.Add(30 * time.Second)
	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)

	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryClearAndClose(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	require.NoError(t, m.Set(ctx, "a", []byte("one"), 0))
	require.NoError(t, m.Clear(ctx))
	assert.Equal(t, 0, m.Len())

	_, err := m.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrMiss))

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Set(ctx, "a", nil, 0), ErrClosed)
}

func TestNewFallsBackToMemory(t *testing.T) {
	store, err := New("", time.Second)
	require.NoError(t, err)
	_, ok := store.(*Memory)
	assert.True(t, ok)
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(RedisOptions{})
	assert.Error(t, err)

	_, err = NewRedis(RedisOptions{URL: "not-a-url"})
	assert.Error(t, err)
}

func TestMemoryStaysBounded(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryWithOptions(MemoryOptions{DefaultTTL: time.Minute, MaxEntries: 3})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		require.NoError(t, m.Set(ctx, "junk-"+strconv.Itoa(i), []byte("x"), 0))
		now = now.Add(time.Second)
	}
	assert.Equal(t, 3, m.Len())

	// The newest entries survive; the ones closest to expiry are evicted.
	_, err := m.Get(ctx, "junk-49")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "junk-0")
	assert.ErrorIs(t, err, ErrMiss)

	// Overwriting an existing key does not evict anything.
	require.NoError(t, m.Set(ctx, "junk-49", []byte("y"), 0))
	assert.Equal(t, 3, m.Len())
}

func TestMemoryDefaultLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)
	for i := 0; i < DefaultMaxEntries+100; i++ {
		require.NoError(t, m.Set(ctx, strconv.Itoa(i), []byte("x"), 0))
	}
	assert.Equal(t, DefaultMaxEntries, m.Len())
}

func TestMemoryExpiredReadKeepsFreshWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	for round := 0; round < 200; round++ {
		require.NoError(t, m.Set(ctx, "page", []byte("stale"), time.Nanosecond))
		time.Sleep(time.Microsecond)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = m.Get(ctx, "page")
			}()
		}
		require.NoError(t, m.Set(ctx, "page", []byte("fresh"), time.Minute))
		wg.Wait()

		got, err := m.Get(ctx, "page")
		require.NoError(t, err, "round %d: refreshed entry was dropped", round)
		assert.Equal(t, []byte("fresh"), got)
	}
}
