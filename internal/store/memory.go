package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements Store in process memory.
// The map lock only guards lookups; each queue has its own lock for
// read-modify-write, so distinct codes never wait on each other.
type MemoryStore struct {
	mu     sync.RWMutex
	queues map[string]*memEntry
}

type memEntry struct {
	mu      sync.Mutex
	rec     *Record
	deleted bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{queues: make(map[string]*memEntry)}
}

func (m *MemoryStore) entry(code string) *memEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queues[code]
}

// Create writes a new queue record
func (m *MemoryStore) Create(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.queues[rec.Code]; ok {
		return ErrExists
	}
	m.queues[rec.Code] = &memEntry{rec: rec.Clone()}
	return nil
}

// Exists reports whether the code is live
func (m *MemoryStore) Exists(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return m.entry(code) != nil, nil
}

// Load returns a copy of the queue record
func (m *MemoryStore) Load(ctx context.Context, code string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := m.entry(code)
	if e == nil {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return nil, ErrNotFound
	}
	return e.rec.Clone(), nil
}

// LoadMany returns metadata-only copies for the live codes
func (m *MemoryStore) LoadMany(ctx context.Context, codes []string) ([]*Record, error) {
	out := make([]*Record, 0, len(codes))
	for _, code := range codes {
		rec, err := m.Load(ctx, code)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		rec.Blocks = nil
		out = append(out, rec)
	}
	return out, nil
}

// Apply runs fn under the queue's lock and swaps in the mutated copy
func (m *MemoryStore) Apply(ctx context.Context, code string, fn ApplyFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := m.entry(code)
	if e == nil {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return ErrNotFound
	}

	mut, err := fn(e.rec.Clone())
	if err != nil {
		return err
	}
	if mut.Empty() {
		return nil
	}

	// Deadline passed while deciding: commit nothing.
	if err := ctx.Err(); err != nil {
		return err
	}

	next := e.rec.Clone()
	if err := applyMutation(next, mut); err != nil {
		return err
	}
	e.rec = next
	return nil
}

// Delete removes the queue. Deleting a missing code is a no-op.
func (m *MemoryStore) Delete(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	e := m.queues[code]
	delete(m.queues, code)
	m.mu.Unlock()

	if e != nil {
		e.mu.Lock()
		e.deleted = true
		e.mu.Unlock()
	}
	return nil
}

// Codes lists live codes in lexical order
func (m *MemoryStore) Codes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	codes := make([]string, 0, len(m.queues))
	for code := range m.queues {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// Keys lists the logical keys currently held, mirroring the Redis key space.
// An empty block list has no key, as in Redis.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for code, e := range m.queues {
		e.mu.Lock()
		keys = append(keys, QueueKey(code), CounterKey(code), CapacityKey(code), OwnerKey(code))
		if len(e.rec.Blocks) > 0 {
			keys = append(keys, BlocksKey(code))
		}
		e.mu.Unlock()
	}
	sort.Strings(keys)
	return keys
}

func applyMutation(rec *Record, m *Mutation) error {
	for i := range m.SetBlocks {
		if i < 0 || i >= len(rec.Blocks) {
			return fmt.Errorf("block index %d out of range (%d blocks)", i, len(rec.Blocks))
		}
	}

	if m.Meta != nil {
		rec.Meta = cloneBytes(m.Meta)
	}
	rec.BlockCounter += m.CounterDelta
	for i, raw := range m.SetBlocks {
		rec.Blocks[i] = cloneBytes(raw)
	}
	for _, raw := range m.AppendBlocks {
		rec.Blocks = append(rec.Blocks, cloneBytes(raw))
	}
	return nil
}
