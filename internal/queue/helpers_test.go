package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/store"
)

const (
	ownerA = "1"
	ownerB = "2"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeRegistry is an in-memory owner registry.
type fakeRegistry struct {
	mu     sync.Mutex
	owners map[string][]string
	addErr error
}

func newFakeRegistry(ids ...string) *fakeRegistry {
	r := &fakeRegistry{owners: make(map[string][]string)}
	for _, id := range ids {
		r.owners[id] = nil
	}
	return r
}

func (r *fakeRegistry) GetOwner(_ context.Context, id string) (*models.ServiceProvider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes, ok := r.owners[id]
	if !ok {
		return nil, models.ErrProviderNotFound
	}
	p := &models.ServiceProvider{Name: "provider " + id}
	for _, c := range codes {
		p.QueueCodes = append(p.QueueCodes, models.ProviderQueue{Code: c})
	}
	return p, nil
}

func (r *fakeRegistry) AddQueueCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	codes, ok := r.owners[id]
	if !ok {
		return models.ErrProviderNotFound
	}
	for _, c := range codes {
		if c == code {
			return nil
		}
	}
	r.owners[id] = append(codes, code)
	return nil
}

func (r *fakeRegistry) RemoveQueueCode(_ context.Context, id, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	codes := r.owners[id]
	out := codes[:0]
	for _, c := range codes {
		if c != code {
			out = append(out, c)
		}
	}
	if _, ok := r.owners[id]; ok {
		r.owners[id] = out
	}
	return nil
}

func (r *fakeRegistry) SetOwnerQueueCodes(_ context.Context, id string, codes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.owners[id]; !ok {
		return models.ErrProviderNotFound
	}
	r.owners[id] = append([]string(nil), codes...)
	return nil
}

func (r *fakeRegistry) OwnerIDs(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeRegistry) codes(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.owners[id]...)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	svc    *Service
	store  store.Store
	reg    *fakeRegistry
	events *recorder
}

func newFixture(t *testing.T, st store.Store) *fixture {
	t.Helper()
	reg := newFakeRegistry(ownerA, ownerB)
	events := &recorder{}
	svc := NewService(st, reg, logger.Nop(), Options{
		Publisher: events,
		Now:       func() time.Time { return fixedNow },
	})
	return &fixture{svc: svc, store: st, reg: reg, events: events}
}

func newMemoryFixture(t *testing.T) *fixture {
	return newFixture(t, store.NewMemoryStore())
}

func newRedisStore(t *testing.T) (*store.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return store.NewRedisStore(rdb, 32, logger.Nop()), mr
}

func (f *fixture) createQueue(t *testing.T, owner string, cfg models.QueueConfig) string {
	t.Helper()
	if cfg.Name == "" {
		cfg.Name = "Test queue"
	}
	q, err := f.svc.CreateQueue(context.Background(), owner, cfg)
	require.NoError(t, err)
	return q.Code
}

func (f *fixture) join(t *testing.T, code string, size int) *Admission {
	t.Helper()
	adm, err := f.svc.JoinQueue(context.Background(), code, models.Party{DisplayName: "guest", Size: size})
	require.NoError(t, err)
	return adm
}

func (f *fixture) blocks(t *testing.T, code string) []models.Block {
	t.Helper()
	view, err := f.svc.GetQueue(context.Background(), code, ownerForCode(t, f, code))
	require.NoError(t, err)
	return view.Blocks
}

func ownerForCode(t *testing.T, f *fixture, code string) string {
	t.Helper()
	rec, err := f.store.Load(context.Background(), code)
	require.NoError(t, err)
	return rec.OwnerID
}

func ptr[T any](v T) *T { return &v }

var errRegistryDown = errors.New("registry down")
