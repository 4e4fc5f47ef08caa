package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "json").WithComponent("packer").WithQueue("ABC123")

	log.Info("party admitted", "block_id", "ABC123-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "party admitted", entry["msg"])
	assert.Equal(t, "packer", entry["component"])
	assert.Equal(t, "ABC123", entry["code"])
	assert.Equal(t, "ABC123-1", entry["block_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextRoundTrip(t *testing.T) {
	fallback := Nop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	scoped := fallback.With("request_id", "r-1")
	ctx := scoped.IntoContext(context.Background())
	assert.Same(t, scoped, FromContext(ctx, fallback))
}
