package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, newRecord("ABC123")))
	assert.Equal(t, []string{
		"queue:ABC123",
		"queue:ABC123:block_capacity",
		"queue:ABC123:block_counter",
		"queue:ABC123:service_provider_id",
	}, s.Keys())

	require.NoError(t, s.Apply(ctx, "ABC123", func(*Record) (*Mutation, error) {
		return &Mutation{AppendBlocks: [][]byte{[]byte(`"b"`)}}, nil
	}))
	assert.Contains(t, s.Keys(), "blocks:ABC123")

	require.NoError(t, s.Delete(ctx, "ABC123"))
	assert.Empty(t, s.Keys())
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, newRecord("ABC123")))

	rec, err := s.Load(ctx, "ABC123")
	require.NoError(t, err)
	rec.Meta[0] = 'X'

	again, err := s.Load(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again.Meta[0])
}
