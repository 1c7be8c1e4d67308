package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, err := NewID()
	require.NoError(t, err)
	b, err := NewID()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "sid", Data{UserID: 3, CartSessionID: "guest_x"}, time.Hour))
	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, Data{UserID: 3, CartSessionID: "guest_x"}, got)

	// 期限切れ
	now = now.Add(time.Hour)
	_, err = s.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "sid2", Data{UserID: 1}, time.Hour))
	require.NoError(t, s.Delete(ctx, "sid2"))
	_, err = s.Load(ctx, "sid2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client)

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "sid", Data{UserID: 9}, 30*time.Minute))
	assert.True(t, mr.Exists("acharam:session:sid"))
	assert.Equal(t, 30*time.Minute, mr.TTL("acharam:session:sid"))

	got, err := s.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.UserID)

	mr.FastForward(31 * time.Minute)
	_, err = s.Load(ctx, "sid")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "sid", Data{CartSessionID: "guest_1"}, time.Hour))
	require.NoError(t, s.Delete(ctx, "sid"))
	assert.False(t, mr.Exists("acharam:session:sid"))
}

func TestRedisStore_BrokenPayload(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("acharam:session:bad", "{not json"))
	_, err := NewRedisStore(client).Load(ctx, "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
