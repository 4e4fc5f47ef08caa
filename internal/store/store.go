// Package store holds queue-scoped records: metadata, block capacity, block
// counter, owner and the ordered block list. Every multi-key change goes
// through Apply, Create or Delete, which are atomic per queue code.
package store

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no live queue has the code
	ErrNotFound = errors.New("store: queue not found")
	// ErrExists is returned by Create when the code is already live
	ErrExists = errors.New("store: queue code already in use")
	// ErrConflict is returned when optimistic retries are exhausted
	ErrConflict = errors.New("store: concurrent modification")
	// ErrUnavailable wraps backend I/O failures
	ErrUnavailable = errors.New("store: unavailable")
)

// QueueKey is the single-slot list holding queue metadata.
func QueueKey(code string) string { return "queue:" + code }

// CounterKey holds the monotonic block counter.
func CounterKey(code string) string { return "queue:" + code + ":block_counter" }

// CapacityKey holds the immutable block capacity.
func CapacityKey(code string) string { return "queue:" + code + ":block_capacity" }

// OwnerKey holds the owning service provider id.
func OwnerKey(code string) string { return "queue:" + code + ":service_provider_id" }

// BlocksKey holds the ordered list of serialized blocks.
func BlocksKey(code string) string { return "blocks:" + code }

// Keys returns every key that belongs to a queue.
func Keys(code string) []string {
	return []string{QueueKey(code), CounterKey(code), CapacityKey(code), OwnerKey(code), BlocksKey(code)}
}

// Record is a consistent snapshot of one queue's keys.
type Record struct {
	Code          string
	OwnerID       string
	BlockCapacity int
	BlockCounter  int64
	Meta          []byte
	Blocks        [][]byte
}

// Clone returns a deep copy so mutations never alias stored bytes.
func (r *Record) Clone() *Record {
	c := *r
	c.Meta = cloneBytes(r.Meta)
	c.Blocks = make([][]byte, len(r.Blocks))
	for i, b := range r.Blocks {
		c.Blocks[i] = cloneBytes(b)
	}
	return &c
}

// Mutation describes the writes of one read-modify-write cycle.
// Block indexes refer to the snapshot passed to the ApplyFunc.
type Mutation struct {
	Meta         []byte         // nil leaves the metadata untouched
	CounterDelta int64          // added to the block counter
	SetBlocks    map[int][]byte // replace block at index
	AppendBlocks [][]byte       // appended after the existing blocks
}

// Empty reports whether the mutation writes nothing.
func (m *Mutation) Empty() bool {
	return m == nil || (m.Meta == nil && m.CounterDelta == 0 && len(m.SetBlocks) == 0 && len(m.AppendBlocks) == 0)
}

// SetBlock records a replacement for the block at index i.
func (m *Mutation) SetBlock(i int, raw []byte) {
	if m.SetBlocks == nil {
		m.SetBlocks = make(map[int][]byte)
	}
	m.SetBlocks[i] = raw
}

// ApplyFunc inspects a snapshot and returns the writes to commit. Returning an
// error aborts without writing. It may be called more than once when an
// optimistic transaction is retried, so it must not have side effects.
type ApplyFunc func(rec *Record) (*Mutation, error)

// Store is the queue store.
type Store interface {
	// Create writes a new queue. Returns ErrExists if the code is live.
	Create(ctx context.Context, rec *Record) error
	// Exists reports whether the code is live.
	Exists(ctx context.Context, code string) (bool, error)
	// Load returns a snapshot of the queue.
	Load(ctx context.Context, code string) (*Record, error)
	// LoadMany returns metadata and owner for each live code, skipping missing ones.
	// Blocks are not loaded.
	LoadMany(ctx context.Context, codes []string) ([]*Record, error)
	// Apply runs fn against a snapshot and commits its mutation atomically.
	Apply(ctx context.Context, code string, fn ApplyFunc) error
	// Delete removes every key of the queue in one step.
	Delete(ctx context.Context, code string) error
	// Codes lists all live codes.
	Codes(ctx context.Context) ([]string, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
