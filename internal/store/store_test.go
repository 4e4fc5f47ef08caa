package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(code string) *Record {
	return &Record{
		Code:          code,
		OwnerID:       "7",
		BlockCapacity: 10,
		Meta:          []byte(`{"code":"` + code + `"}`),
	}
}

// testStoreContract exercises the behaviour every Store must share.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("AAA111")))

		rec, err := s.Load(ctx, "AAA111")
		require.NoError(t, err)
		assert.Equal(t, "7", rec.OwnerID)
		assert.Equal(t, 10, rec.BlockCapacity)
		assert.Equal(t, int64(0), rec.BlockCounter)
		assert.JSONEq(t, `{"code":"AAA111"}`, string(rec.Meta))
		assert.Empty(t, rec.Blocks)

		ok, err := s.Exists(ctx, "AAA111")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("create rejects live code", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("AAA111")))
		assert.ErrorIs(t, s.Create(ctx, newRecord("AAA111")), ErrExists)
	})

	t.Run("missing queue", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Load(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrNotFound)

		err = s.Apply(ctx, "NOPE00", func(*Record) (*Mutation, error) {
			t.Fatal("apply func must not run for a missing queue")
			return nil, nil
		})
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := s.Exists(ctx, "NOPE00")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("apply commits mutation", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("BBB222")))

		err := s.Apply(ctx, "BBB222", func(rec *Record) (*Mutation, error) {
			return &Mutation{
				Meta:         []byte(`{"code":"BBB222","name":"x"}`),
				CounterDelta: 1,
				AppendBlocks: [][]byte{[]byte(`"b1"`), []byte(`"b2"`)},
			}, nil
		})
		require.NoError(t, err)

		err = s.Apply(ctx, "BBB222", func(rec *Record) (*Mutation, error) {
			require.Len(t, rec.Blocks, 2)
			m := &Mutation{}
			m.SetBlock(1, []byte(`"b2-updated"`))
			return m, nil
		})
		require.NoError(t, err)

		rec, err := s.Load(ctx, "BBB222")
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.BlockCounter)
		assert.JSONEq(t, `{"code":"BBB222","name":"x"}`, string(rec.Meta))
		require.Len(t, rec.Blocks, 2)
		assert.Equal(t, `"b1"`, string(rec.Blocks[0]))
		assert.Equal(t, `"b2-updated"`, string(rec.Blocks[1]))
	})

	t.Run("apply error writes nothing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("CCC333")))

		boom := errors.New("boom")
		err := s.Apply(ctx, "CCC333", func(rec *Record) (*Mutation, error) {
			return &Mutation{CounterDelta: 5}, boom
		})
		assert.ErrorIs(t, err, boom)

		rec, err := s.Load(ctx, "CCC333")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.BlockCounter)
	})

	t.Run("out of range block index is rejected", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("DDD444")))

		err := s.Apply(ctx, "DDD444", func(rec *Record) (*Mutation, error) {
			m := &Mutation{CounterDelta: 1}
			m.SetBlock(3, []byte(`"x"`))
			return m, nil
		})
		require.Error(t, err)

		rec, err := s.Load(ctx, "DDD444")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.BlockCounter, "nothing may be written")
	})

	t.Run("delete removes the queue", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("EEE555")))
		require.NoError(t, s.Apply(ctx, "EEE555", func(*Record) (*Mutation, error) {
			return &Mutation{AppendBlocks: [][]byte{[]byte(`"b"`)}}, nil
		}))

		require.NoError(t, s.Delete(ctx, "EEE555"))
		_, err := s.Load(ctx, "EEE555")
		assert.ErrorIs(t, err, ErrNotFound)

		// code is free again
		require.NoError(t, s.Create(ctx, newRecord("EEE555")))
		rec, err := s.Load(ctx, "EEE555")
		require.NoError(t, err)
		assert.Empty(t, rec.Blocks)
	})

	t.Run("load many and codes", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("FFF666")))
		require.NoError(t, s.Create(ctx, newRecord("GGG777")))

		recs, err := s.LoadMany(ctx, []string{"FFF666", "MISSNG", "GGG777"})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "FFF666", recs[0].Code)
		assert.Equal(t, "7", recs[0].OwnerID)
		assert.Equal(t, "GGG777", recs[1].Code)

		codes, err := s.Codes(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"FFF666", "GGG777"}, codes)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("HHH888")))

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- s.Apply(ctx, "HHH888", func(rec *Record) (*Mutation, error) {
					return &Mutation{
						CounterDelta: 1,
						AppendBlocks: [][]byte{[]byte(fmt.Sprintf(`"w%d"`, i))},
					}, nil
				})
			}(i)
		}
		wg.Wait()
		close(errs)

		committed := 0
		for err := range errs {
			if err == nil {
				committed++
				continue
			}
			assert.ErrorIs(t, err, ErrConflict)
		}

		rec, err := s.Load(ctx, "HHH888")
		require.NoError(t, err)
		assert.Equal(t, int64(committed), rec.BlockCounter)
		assert.Len(t, rec.Blocks, committed)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, newRecord("III999")))

		cctx, cancel := context.WithTimeout(ctx, time.Nanosecond)
		defer cancel()
		<-cctx.Done()

		err := s.Apply(cctx, "III999", func(*Record) (*Mutation, error) {
			return &Mutation{CounterDelta: 1}, nil
		})
		require.Error(t, err)

		rec, err := s.Load(ctx, "III999")
		require.NoError(t, err)
		assert.Equal(t, int64(0), rec.BlockCounter)
	})
}

func TestMutationEmpty(t *testing.T) {
	var nilMut *Mutation
	assert.True(t, nilMut.Empty())
	assert.True(t, (&Mutation{}).Empty())
	assert.False(t, (&Mutation{CounterDelta: 1}).Empty())

	m := &Mutation{}
	m.SetBlock(0, []byte("x"))
	assert.False(t, m.Empty())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{
		"queue:ABC123",
		"queue:ABC123:block_counter",
		"queue:ABC123:block_capacity",
		"queue:ABC123:service_provider_id",
		"blocks:ABC123",
	}, Keys("ABC123"))
}

func TestRecordCloneIsDeep(t *testing.T) {
	rec := &Record{Meta: []byte("m"), Blocks: [][]byte{[]byte("b")}}
	c := rec.Clone()
	c.Meta[0] = 'x'
	c.Blocks[0][0] = 'y'
	assert.Equal(t, "m", string(rec.Meta))
	assert.Equal(t, "b", string(rec.Blocks[0]))
}
