package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queuely/internal/logger"
)

func newRedisStore(t *testing.T, retries int) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, retries, logger.Nop()), mr, rdb
}

func TestRedisStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		s, _, _ := newRedisStore(t, 16)
		return s
	})
}

func TestRedisStoreKeyLayout(t *testing.T) {
	ctx := context.Background()
	s, mr, _ := newRedisStore(t, 4)

	require.NoError(t, s.Create(ctx, newRecord("ABC123")))
	require.NoError(t, s.Apply(ctx, "ABC123", func(*Record) (*Mutation, error) {
		return &Mutation{CounterDelta: 1, AppendBlocks: [][]byte{[]byte(`{"block_id":"ABC123-1"}`)}}, nil
	}))

	assert.ElementsMatch(t, []string{
		"queue:ABC123",
		"queue:ABC123:block_counter",
		"queue:ABC123:block_capacity",
		"queue:ABC123:service_provider_id",
		"blocks:ABC123",
	}, mr.Keys())

	meta, err := mr.List("queue:ABC123")
	require.NoError(t, err)
	assert.Len(t, meta, 1, "metadata is a single-slot list")

	counter, err := mr.Get("queue:ABC123:block_counter")
	require.NoError(t, err)
	assert.Equal(t, "1", counter)

	require.NoError(t, s.Delete(ctx, "ABC123"))
	assert.Empty(t, mr.Keys())
}

func TestRedisStoreRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	s, _, rdb := newRedisStore(t, 4)
	require.NoError(t, s.Create(ctx, newRecord("ABC123")))

	calls := 0
	err := s.Apply(ctx, "ABC123", func(rec *Record) (*Mutation, error) {
		calls++
		if calls == 1 {
			// another writer touches a watched key between read and EXEC
			require.NoError(t, rdb.IncrBy(ctx, CounterKey("ABC123"), 10).Err())
		}
		return &Mutation{CounterDelta: 1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	rec, err := s.Load(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, int64(11), rec.BlockCounter)
}

func TestRedisStoreConflictExhausted(t *testing.T) {
	ctx := context.Background()
	s, _, rdb := newRedisStore(t, 3)
	require.NoError(t, s.Create(ctx, newRecord("ABC123")))

	calls := 0
	err := s.Apply(ctx, "ABC123", func(rec *Record) (*Mutation, error) {
		calls++
		require.NoError(t, rdb.RPush(ctx, BlocksKey("ABC123"), "noise").Err())
		return &Mutation{CounterDelta: 1}, nil
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 3, calls)

	rec, err := s.Load(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.BlockCounter)
}

func TestRedisStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr, _ := newRedisStore(t, 2)
	require.NoError(t, s.Create(ctx, newRecord("ABC123")))

	mr.Close()

	_, err := s.Load(ctx, "ABC123")
	assert.ErrorIs(t, err, ErrUnavailable)

	err = s.Apply(ctx, "ABC123", func(*Record) (*Mutation, error) {
		return &Mutation{CounterDelta: 1}, nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedisStoreCorruptTypeIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mr, _ := newRedisStore(t, 2)

	// metadata stored under the wrong type
	require.NoError(t, mr.Set("queue:BAD000", "not-a-list"))
	_, err := s.Load(ctx, "BAD000")
	assert.ErrorIs(t, err, ErrUnavailable)
}
