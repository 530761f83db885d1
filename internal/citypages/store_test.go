package citypages

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_PutGet(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "raleigh", "NC")
	assert.ErrorIs(t, err, ErrNotFound)

	page := Fallback("raleigh", "NC", "(336) 569-7223")
	page.ZipCodes = []string{"27601"}
	require.NoError(t, store.Put(ctx, "raleigh", page))
	assert.True(t, mr.Exists("city_page:raleigh"))

	got, err := store.Get(ctx, "raleigh", "NC")
	require.NoError(t, err)
	assert.Equal(t, page, *got)

	_, err = store.Get(ctx, "raleigh", "SC")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, mr.Set("city_page:durham", "{not json"))

	_, err := store.Get(context.Background(), "durham", "NC")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore_NilClient(t *testing.T) {
	assert.Nil(t, NewRedisStore(nil))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "cary", CityData{CityName: "Cary", StateCode: "NC"}))

	got, err := store.Get(ctx, "cary", "")
	require.NoError(t, err)
	assert.Equal(t, "Cary", got.CityName)

	_, err = store.Get(ctx, "apex", "NC")
	assert.ErrorIs(t, err, ErrNotFound)
}
