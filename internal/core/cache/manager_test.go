package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"flavor-twin/internal/core/flavor"
	"flavor-twin/internal/infrastructure/config"
	"flavor-twin/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testManager(maxSize int, ttl time.Duration) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl}, clock.Now)
	return m, clock
}

func dish(name string) flavor.Dish {
	return flavor.Dish{Name: name, Ingredients: []string{"salt"}, Cuisine: "Test"}
}

func TestManager_SetGet(t *testing.T) {
	m, _ := testManager(10, time.Hour)
	ctx := context.Background()

	_, err := m.Get(ctx, "pad thai")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "Pad  Thai", dish("Pad Thai")))

	// 查詢字串正規化後相同
	got, err := m.Get(ctx, " pad thai ")
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", got.Name)

	stats := m.Stats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
	assert.Equal(t, 1, stats["size"])
}

func TestManager_TTL(t *testing.T) {
	m, clock := testManager(10, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "pho", dish("Pho")))
	clock.Advance(59 * time.Second)
	_, err := m.Get(ctx, "pho")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = m.Get(ctx, "pho")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestManager_LRUEviction(t *testing.T) {
	m, clock := testManager(2, time.Hour)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", dish("A")))
	clock.Advance(time.Second)
	require.NoError(t, m.Set(ctx, "b", dish("B")))

	// a 被讀取過，b 應被淘汰
	clock.Advance(time.Second)
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", dish("C")))

	_, err = m.Get(ctx, "b")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManager_ExpiredEvictedBeforeLRU(t *testing.T) {
	m, clock := testManager(2, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "old", dish("Old")))
	clock.Advance(50 * time.Second)
	require.NoError(t, m.Set(ctx, "new", dish("New")))
	clock.Advance(20 * time.Second)

	require.NoError(t, m.Set(ctx, "newest", dish("Newest")))
	_, err := m.Get(ctx, "new")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), m.Stats()["evictions"])
}

func TestManager_OverwriteAtCapacity(t *testing.T) {
	m, _ := testManager(1, time.Hour)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", dish("A")))
	require.NoError(t, m.Set(ctx, "a", dish("A2")))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A2", got.Name)
	assert.Equal(t, int64(0), m.Stats()["evictions"])
}

func TestManager_Close(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: 5, TTL: time.Hour, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Set(context.Background(), "a", dish("A")))
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Stats()["size"])
}

func TestNew_Backends(t *testing.T) {
	c, err := New(config.CacheConfig{Enabled: false})
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "x")
	assert.True(t, errors.Is(err, common.ErrCacheDisabled))
	assert.NoError(t, c.Set(context.Background(), "x", dish("X")))

	c, err = New(config.CacheConfig{Enabled: true, Backend: config.CacheBackendMemory, MaxSize: 1, TTL: time.Hour})
	require.NoError(t, err)
	assert.IsType(t, &Manager{}, c)
	require.NoError(t, c.Close())

	_, err = New(config.CacheConfig{Enabled: true, Backend: config.CacheBackendRedis, RedisAddr: "127.0.0.1:1", TTL: time.Hour})
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, generateKey("Butter   Chicken"), generateKey("butter chicken"))
	assert.NotEqual(t, generateKey("butter chicken"), generateKey("chicken butter"))
	assert.Contains(t, generateKey("x"), "dish:")
}
