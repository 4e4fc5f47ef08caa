package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"queuely/internal/codegen"
	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/store"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Registry is the relational owner registry. It owns providers and the set
// of codes each one owns; the queue store owns everything else.
type Registry interface {
	GetOwner(ctx context.Context, ownerID string) (*models.ServiceProvider, error)
	AddQueueCode(ctx context.Context, ownerID, code string) error
	RemoveQueueCode(ctx context.Context, ownerID, code string) error
	SetOwnerQueueCodes(ctx context.Context, ownerID string, codes []string) error
	OwnerIDs(ctx context.Context) ([]string, error)
}

// ListQuery selects a page of an owner's queues.
type ListQuery struct {
	Search string
	Limit  int
	Offset int
}

// ListResult is one page of queues ordered by name.
type ListResult struct {
	Queues []models.Queue `json:"queues"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ReconcileReport counts the repairs made by one reconciliation pass.
type ReconcileReport struct {
	Registered int `json:"registered"`
	Orphaned   int `json:"orphaned"`
	Pruned     int `json:"pruned"`
}

// Lifecycle drives queue transitions and enforces ownership.
type Lifecycle struct {
	store    store.Store
	registry Registry
	codes    *codegen.Generator
	attempts int
	log      *logger.Logger
	now      func() time.Time
}

// NewLifecycle creates a lifecycle manager
func NewLifecycle(st store.Store, reg Registry, codes *codegen.Generator, attempts int, log *logger.Logger, now func() time.Time) *Lifecycle {
	if codes == nil {
		codes = codegen.New()
	}
	if attempts < 1 {
		attempts = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{
		store:    st,
		registry: reg,
		codes:    codes,
		attempts: attempts,
		log:      log.WithComponent("lifecycle"),
		now:      now,
	}
}

// Create allocates a free code, writes the queue record and then registers the
// code with its owner. If registration fails the record is removed again.
func (l *Lifecycle) Create(ctx context.Context, ownerID string, cfg models.QueueConfig) (*models.Queue, error) {
	if ownerID == "" {
		return nil, ErrForbidden
	}
	q, err := newQueue(ownerID, cfg, l.now().UTC())
	if err != nil {
		return nil, err
	}

	if _, err := l.registry.GetOwner(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("lookup owner %s: %w", ownerID, err)
	}

	code, err := l.codes.Claim(ctx, l.attempts, func(ctx context.Context, code string) (bool, error) {
		q.Code = code
		meta, err := encodeQueue(q)
		if err != nil {
			return false, err
		}
		err = l.store.Create(ctx, &store.Record{
			Code:          code,
			OwnerID:       ownerID,
			BlockCapacity: q.MaxBlockCapacity,
			Meta:          meta,
		})
		if errors.Is(err, store.ErrExists) {
			l.log.Debug("code collision", "code", code)
			return false, nil
		}
		return err == nil, err
	})
	if err != nil {
		return nil, translate(err)
	}

	if err := l.registry.AddQueueCode(ctx, ownerID, code); err != nil {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if delErr := l.store.Delete(cleanupCtx, code); delErr != nil {
			l.log.Error("compensating delete failed, left for reconciliation", "code", code, "error", delErr)
		}
		return nil, fmt.Errorf("register queue %s: %w", code, err)
	}

	l.log.Info("queue created", "code", code, "owner", ownerID, "block_capacity", q.MaxBlockCapacity)
	return q, nil
}

// Update merges the non-nil fields of patch into the queue metadata.
func (l *Lifecycle) Update(ctx context.Context, code, requester string, patch models.QueuePatch) (*models.Queue, error) {
	var updated *models.Queue
	err := l.store.Apply(ctx, code, func(rec *store.Record) (*store.Mutation, error) {
		updated = nil
		q, err := authorize(rec, requester)
		if err != nil {
			return nil, err
		}
		if patch.MaxBlockCapacity != nil {
			return nil, ErrImmutableField
		}
		if err := mergePatch(q, patch, blockCapacity(rec, q)); err != nil {
			return nil, err
		}
		q.UpdatedAt = l.now().UTC()
		meta, err := encodeQueue(q)
		if err != nil {
			return nil, err
		}
		updated = q
		return &store.Mutation{Meta: meta}, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Delete removes the store records first and the owner reference second, so
// an interruption leaves at most a dangling reference, which reconciliation
// prunes.
func (l *Lifecycle) Delete(ctx context.Context, code, requester string) error {
	rec, err := l.store.Load(ctx, code)
	if err != nil {
		return translate(err)
	}
	if _, err := authorize(rec, requester); err != nil {
		return err
	}

	if err := l.store.Delete(ctx, code); err != nil {
		return translate(err)
	}
	if err := l.registry.RemoveQueueCode(ctx, rec.OwnerID, code); err != nil {
		l.log.Warn("owner reference left for reconciliation", "code", code, "owner", rec.OwnerID, "error", err)
	}

	l.log.Info("queue deleted", "code", code, "owner", rec.OwnerID)
	return nil
}

// Dispatch marks the oldest open block as dispatched. A queue without open
// blocks is left unchanged and a nil block is returned.
func (l *Lifecycle) Dispatch(ctx context.Context, code, requester string) (*models.Block, error) {
	return l.dispatchOldest(ctx, code, func(rec *store.Record) (*models.Queue, error) {
		return authorize(rec, requester)
	}, false)
}

// DispatchFull dispatches the oldest open block of an auto-dispatch queue
// once it is full. Manual-dispatch queues are never touched.
func (l *Lifecycle) DispatchFull(ctx context.Context, code string) (*models.Block, error) {
	return l.dispatchOldest(ctx, code, func(rec *store.Record) (*models.Queue, error) {
		q, err := decodeQueue(rec)
		if err != nil {
			return nil, err
		}
		if q.ManualDispatch {
			return nil, nil
		}
		return q, nil
	}, true)
}

func (l *Lifecycle) dispatchOldest(ctx context.Context, code string, check func(*store.Record) (*models.Queue, error), onlyFull bool) (*models.Block, error) {
	var dispatched *models.Block
	err := l.store.Apply(ctx, code, func(rec *store.Record) (*store.Mutation, error) {
		dispatched = nil
		q, err := check(rec)
		if err != nil || q == nil {
			return nil, err
		}

		for i, raw := range rec.Blocks {
			b, err := decodeBlock(raw)
			if err != nil {
				l.log.Warn("skipping malformed block", "code", code, "index", i, "error", err)
				continue
			}
			if b.Status != models.BlockOpen {
				continue
			}
			if onlyFull && !b.Full() {
				return nil, nil
			}
			at := l.now().UTC()
			b.Status = models.BlockDispatched
			b.DispatchedAt = &at
			out, err := encodeBlock(b)
			if err != nil {
				return nil, err
			}
			mut := &store.Mutation{}
			mut.SetBlock(i, out)
			dispatched = b
			return mut, nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	if dispatched != nil {
		l.log.Info("block dispatched", "code", code, "block_id", dispatched.ID, "parties", len(dispatched.Parties))
	}
	return dispatched, nil
}

// Get returns the queue with its blocks to its owner.
func (l *Lifecycle) Get(ctx context.Context, code, requester string) (*models.QueueView, error) {
	rec, err := l.store.Load(ctx, code)
	if err != nil {
		return nil, translate(err)
	}
	q, err := authorize(rec, requester)
	if err != nil {
		return nil, err
	}

	view := &models.QueueView{Queue: *q, BlockCounter: rec.BlockCounter, Blocks: []models.Block{}}
	for i, raw := range rec.Blocks {
		b, err := decodeBlock(raw)
		if err != nil {
			l.log.Warn("skipping malformed block", "code", code, "index", i, "error", err)
			continue
		}
		view.Blocks = append(view.Blocks, *b)
	}
	return view, nil
}

// Status returns the public summary of a queue.
func (l *Lifecycle) Status(ctx context.Context, code string) (*models.QueueStatus, error) {
	rec, err := l.store.Load(ctx, code)
	if err != nil {
		return nil, translate(err)
	}
	q, err := decodeQueue(rec)
	if err != nil {
		return nil, err
	}

	st := &models.QueueStatus{Code: q.Code, Name: q.Name, IsOpen: q.IsOpen}
	for _, raw := range rec.Blocks {
		b, err := decodeBlock(raw)
		if err != nil {
			continue
		}
		if b.Status == models.BlockDispatched {
			st.DispatchedCount++
			continue
		}
		st.OpenBlocks++
		st.WaitingParties += len(b.Parties)
		st.WaitingPeople += b.Occupancy()
	}
	return st, nil
}

// List returns the caller's queues, optionally filtered by a search term,
// ordered by name and paginated.
func (l *Lifecycle) List(ctx context.Context, ownerID string, query ListQuery) (*ListResult, error) {
	if ownerID == "" {
		return nil, ErrForbidden
	}
	if query.Limit <= 0 {
		query.Limit = DefaultListLimit
	}
	if query.Limit > MaxListLimit {
		query.Limit = MaxListLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}

	owner, err := l.registry.GetOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("lookup owner %s: %w", ownerID, err)
	}
	recs, err := l.store.LoadMany(ctx, owner.Codes())
	if err != nil {
		return nil, translate(err)
	}

	term := strings.TrimSpace(sanitize(query.Search))
	queues := make([]models.Queue, 0, len(recs))
	for _, rec := range recs {
		if rec.OwnerID != ownerID {
			continue
		}
		q, err := decodeQueue(rec)
		if err != nil {
			l.log.Warn("skipping queue with corrupt metadata", "code", rec.Code, "error", err)
			continue
		}
		if term != "" && !strings.Contains(sanitize(string(rec.Meta)), term) {
			continue
		}
		queues = append(queues, *q)
	}

	sort.SliceStable(queues, func(i, j int) bool {
		a, b := strings.ToLower(queues[i].Name), strings.ToLower(queues[j].Name)
		if a != b {
			return a < b
		}
		return queues[i].Code < queues[j].Code
	})

	res := &ListResult{Total: len(queues), Limit: query.Limit, Offset: query.Offset, Queues: []models.Queue{}}
	if query.Offset < len(queues) {
		end := query.Offset + query.Limit
		if end > len(queues) {
			end = len(queues)
		}
		res.Queues = queues[query.Offset:end]
	}
	return res, nil
}

// Reconcile repairs drift between the store and the registry: live codes
// missing from their owner's set are registered, store records whose owner
// is gone are deleted, and owner references to missing codes are pruned.
// lock serializes the pass with writers of the same code.
func (l *Lifecycle) Reconcile(ctx context.Context, lock func(context.Context, string) (func(), error)) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	ownerIDs, err := l.registry.OwnerIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	registered := make(map[string]map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owner, err := l.registry.GetOwner(ctx, id)
		if errors.Is(err, models.ErrProviderNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup owner %s: %w", id, err)
		}
		set := make(map[string]bool)
		for _, c := range owner.Codes() {
			set[c] = true
		}
		registered[id] = set
	}

	codes, err := l.store.Codes(ctx)
	if err != nil {
		return nil, translate(err)
	}
	recs, err := l.store.LoadMany(ctx, codes)
	if err != nil {
		return nil, translate(err)
	}
	live := make(map[string]string, len(recs))
	for _, rec := range recs {
		live[rec.Code] = rec.OwnerID
	}

	for _, rec := range recs {
		set, ok := registered[rec.OwnerID]
		switch {
		case !ok:
			// The owner may have registered after the snapshot.
			if _, err := l.registry.GetOwner(ctx, rec.OwnerID); !errors.Is(err, models.ErrProviderNotFound) {
				if err != nil {
					return report, fmt.Errorf("lookup owner %s: %w", rec.OwnerID, err)
				}
				continue
			}
			unlock, err := lock(ctx, rec.Code)
			if err != nil {
				return report, err
			}
			err = l.store.Delete(ctx, rec.Code)
			unlock()
			if err != nil {
				return report, translate(err)
			}
			report.Orphaned++
			l.log.Warn("deleted queue without owner", "code", rec.Code, "owner", rec.OwnerID)
		case !set[rec.Code]:
			if err := l.registry.AddQueueCode(ctx, rec.OwnerID, rec.Code); err != nil {
				return report, fmt.Errorf("register %s: %w", rec.Code, err)
			}
			set[rec.Code] = true
			report.Registered++
			l.log.Info("registered unreferenced queue", "code", rec.Code, "owner", rec.OwnerID)
		}
	}

	for ownerID, set := range registered {
		for code := range set {
			if live[code] == ownerID {
				continue
			}
			// The snapshot may predate a concurrent create; check again.
			ok, err := l.store.Exists(ctx, code)
			if err != nil {
				return report, translate(err)
			}
			if ok && live[code] == "" {
				continue
			}
			if err := l.registry.RemoveQueueCode(ctx, ownerID, code); err != nil {
				return report, fmt.Errorf("prune %s: %w", code, err)
			}
			report.Pruned++
			l.log.Info("pruned dangling queue reference", "code", code, "owner", ownerID)
		}
	}
	return report, nil
}

// authorize decodes the metadata and checks that requester owns the queue.
// The owner recorded in the store is authoritative.
func authorize(rec *store.Record, requester string) (*models.Queue, error) {
	q, err := decodeQueue(rec)
	if err != nil {
		return nil, err
	}
	if requester == "" || rec.OwnerID != requester {
		return nil, ErrForbidden
	}
	return q, nil
}

func newQueue(ownerID string, cfg models.QueueConfig, now time.Time) (*models.Queue, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	blockCap := cfg.MaxBlockCapacity
	if blockCap == 0 {
		blockCap = models.DefaultBlockCapacity
	}
	if blockCap < 0 {
		return nil, fmt.Errorf("%w: max_block_capacity must be positive", ErrInvalidConfig)
	}
	partyCap := cfg.MaxPartyCapacity
	if partyCap == 0 {
		partyCap = blockCap
	}
	if partyCap < 0 || partyCap > blockCap {
		return nil, fmt.Errorf("%w: max_party_capacity must be between 1 and %d", ErrInvalidConfig, blockCap)
	}

	return &models.Queue{
		OwnerID:          ownerID,
		IsOpen:           true,
		MaxBlockCapacity: blockCap,
		MaxPartyCapacity: partyCap,
		Name:             name,
		Description:      cfg.Description,
		ImageURL:         cfg.ImageURL,
		ManualDispatch:   cfg.ManualDispatch,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// mergePatch applies the mutable fields of patch. Each field has its own rule.
func mergePatch(q *models.Queue, patch models.QueuePatch, blockCap int) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrInvalidConfig)
		}
		q.Name = name
	}
	if patch.Description != nil {
		q.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		q.ImageURL = *patch.ImageURL
	}
	if patch.IsOpen != nil {
		q.IsOpen = *patch.IsOpen
	}
	if patch.ManualDispatch != nil {
		q.ManualDispatch = *patch.ManualDispatch
	}
	if patch.MaxPartyCapacity != nil {
		v := *patch.MaxPartyCapacity
		if v < 1 || v > blockCap {
			return fmt.Errorf("%w: max_party_capacity must be between 1 and %d", ErrInvalidConfig, blockCap)
		}
		q.MaxPartyCapacity = v
	}
	return nil
}
