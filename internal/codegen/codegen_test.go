package codegen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodeShape(t *testing.T) {
	g := New()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := g.NewCode()
		require.NoError(t, err)
		assert.True(t, Valid(code), "invalid code %q", code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 490, "codes should practically never repeat")
}

func TestNewCodeDeterministicReader(t *testing.T) {
	// zero bytes always map to the first alphabet symbol
	g := NewWithReader(bytes.NewReader(make([]byte, 64)))
	code, err := g.NewCode()
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", code)
}

func TestNewCodeReaderFailure(t *testing.T) {
	g := NewWithReader(bytes.NewReader(nil))
	_, err := g.NewCode()
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("AB12CD"))
	assert.False(t, Valid("ab12cd"))
	assert.False(t, Valid("AB12C"))
	assert.False(t, Valid("AB12CD9"))
	assert.False(t, Valid("AB-2CD"))
}

func TestClaimRetriesTakenCodes(t *testing.T) {
	g := New()
	calls := 0
	code, err := g.Claim(context.Background(), 5, func(_ context.Context, code string) (bool, error) {
		calls++
		return calls == 3, nil
	})
	require.NoError(t, err)
	assert.True(t, Valid(code))
	assert.Equal(t, 3, calls)
}

func TestClaimExhausted(t *testing.T) {
	g := New()
	calls := 0
	_, err := g.Claim(context.Background(), 4, func(context.Context, string) (bool, error) {
		calls++
		return false, nil
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 4, calls)
}

func TestClaimPropagatesErrors(t *testing.T) {
	boom := errors.New("store down")
	_, err := New().Claim(context.Background(), 4, func(context.Context, string) (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestClaimHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Claim(ctx, 4, func(context.Context, string) (bool, error) {
		t.Fatal("claim must not be called")
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
