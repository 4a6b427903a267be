package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, prometheus.NewRegistry()), mr
}

func TestCacheVersionPerBusiness(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	ver, err := cache.Version(ctx, a)
	require.NoError(t, err)
	require.EqualValues(t, 1, ver)

	require.NoError(t, cache.Bump(ctx, a))
	ver, err = cache.Version(ctx, a)
	require.NoError(t, err)
	require.EqualValues(t, 2, ver)

	ver, err = cache.Version(ctx, b)
	require.NoError(t, err)
	require.EqualValues(t, 1, ver)
}

func TestCacheBuildKeyIncludesVersion(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	id := uuid.New()

	key, err := cache.BuildKey(ctx, id, "row", "2024-03")
	require.NoError(t, err)
	require.Equal(t, "metrics:"+id.String()+":row:2024-03:v1", key)

	require.NoError(t, cache.Bump(ctx, id))
	key, err = cache.BuildKey(ctx, id, "row", "2024-03")
	require.NoError(t, err)
	require.Equal(t, "metrics:"+id.String()+":row:2024-03:v2", key)
}

func TestCacheFetchJSONLoadsOnce(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return MetricsRow{Year: 2024, Month: 3, MonthlyPace: 99.5}, nil
	}

	var first, second MetricsRow
	require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))

	require.Equal(t, 1, loads)
	require.Equal(t, first, second)
	require.Equal(t, 99.5, second.MonthlyPace)
	require.True(t, mr.Exists("k"))
	require.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCacheFetchJSONDoesNotCacheErrors(t *testing.T) {
	cache, mr := newTestCache(t)
	var row MetricsRow

	err := cache.FetchJSON(context.Background(), "missing", &row, func(context.Context) (interface{}, error) {
		return nil, ErrMetricsNotFound
	})

	require.True(t, errors.Is(err, ErrMetricsNotFound))
	require.False(t, mr.Exists("missing"))
}

func TestNilCachePassesThrough(t *testing.T) {
	var cache *Cache
	ctx := context.Background()
	id := uuid.New()

	key, err := cache.BuildKey(ctx, id, "year", "2024")
	require.NoError(t, err)
	require.Equal(t, "metrics:"+id.String()+":year:2024", key)
	require.NoError(t, cache.Bump(ctx, id))

	var rows []MetricsRow
	require.NoError(t, cache.FetchJSON(ctx, key, &rows, func(context.Context) (interface{}, error) {
		return []MetricsRow{{Month: 1}}, nil
	}))
	require.Len(t, rows, 1)
}
