// Package queue implements block-packed waitlists: admission, lifecycle and
// the service exposed to handlers and background jobs.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"queuely/internal/codegen"
	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/store"
)

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	CodeAttempts int
	Codes        *codegen.Generator
	Publisher    Publisher
	Now          func() time.Time
}

// Service is the admission entry point. Mutations of one code are serialized in
// process by a keyed lock and across processes by the store's transactions.
type Service struct {
	store     store.Store
	registry  Registry
	packer    *Packer
	lifecycle *Lifecycle
	locks     *keyedLocker
	events    Publisher
	log       *logger.Logger
	now       func() time.Time
}

// NewService wires the packer and lifecycle manager over st and reg
func NewService(st store.Store, reg Registry, log *logger.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = 16
	}
	return &Service{
		store:     st,
		registry:  reg,
		packer:    NewPacker(st, log, opts.Now),
		lifecycle: NewLifecycle(st, reg, opts.Codes, opts.CodeAttempts, log, opts.Now),
		locks:     newKeyedLocker(),
		events:    opts.Publisher,
		log:       log.WithComponent("queue-service"),
		now:       opts.Now,
	}
}

// SetPublisher replaces the event publisher. Call before serving traffic.
func (s *Service) SetPublisher(p Publisher) {
	if p == nil {
		p = nopPublisher{}
	}
	s.events = p
}

// CreateQueue creates a queue owned by ownerID
func (s *Service) CreateQueue(ctx context.Context, ownerID string, cfg models.QueueConfig) (*models.Queue, error) {
	return s.lifecycle.Create(ctx, ownerID, cfg)
}

// JoinQueue admits a party. No ownership is required.
func (s *Service) JoinQueue(ctx context.Context, code string, party models.Party) (*Admission, error) {
	if !codegen.Valid(code) {
		return nil, ErrQueueNotFound
	}
	var adm *Admission
	err := s.withLock(ctx, code, func() (err error) {
		adm, err = s.packer.Admit(ctx, code, party)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(code, EventPartyJoined, map[string]any{
		"party_id":        adm.PartyID,
		"block_id":        adm.BlockID,
		"position":        adm.Position,
		"block_occupancy": adm.Occupancy,
	})
	return adm, nil
}

// LeaveQueue withdraws a waiting party
func (s *Service) LeaveQueue(ctx context.Context, code, partyID string) error {
	if !codegen.Valid(code) {
		return ErrQueueNotFound
	}
	var block *models.Block
	err := s.withLock(ctx, code, func() (err error) {
		block, err = s.packer.Withdraw(ctx, code, partyID)
		return err
	})
	if err != nil {
		return err
	}
	s.publish(code, EventPartyLeft, map[string]any{
		"party_id":        partyID,
		"block_id":        block.ID,
		"block_occupancy": block.Occupancy(),
	})
	return nil
}

// GetQueue returns the queue and its blocks to the owner
func (s *Service) GetQueue(ctx context.Context, code, requester string) (*models.QueueView, error) {
	if !codegen.Valid(code) {
		return nil, ErrQueueNotFound
	}
	return s.lifecycle.Get(ctx, code, requester)
}

// QueueStatus returns the public summary of a queue
func (s *Service) QueueStatus(ctx context.Context, code string) (*models.QueueStatus, error) {
	if !codegen.Valid(code) {
		return nil, ErrQueueNotFound
	}
	return s.lifecycle.Status(ctx, code)
}

// ListQueues returns a page of the caller's queues
func (s *Service) ListQueues(ctx context.Context, ownerID string, query ListQuery) (*ListResult, error) {
	return s.lifecycle.List(ctx, ownerID, query)
}

// UpdateQueue applies a patch as the owner
func (s *Service) UpdateQueue(ctx context.Context, code, requester string, patch models.QueuePatch) (*models.Queue, error) {
	if !codegen.Valid(code) {
		return nil, ErrQueueNotFound
	}
	var q *models.Queue
	err := s.withLock(ctx, code, func() (err error) {
		q, err = s.lifecycle.Update(ctx, code, requester, patch)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(code, EventQueueUpdated, map[string]any{
		"is_open":            q.IsOpen,
		"name":               q.Name,
		"max_party_capacity": q.MaxPartyCapacity,
		"manual_dispatch":    q.ManualDispatch,
	})
	return q, nil
}

// CloseQueue stops admission. Waiting blocks stay until dispatched.
func (s *Service) CloseQueue(ctx context.Context, code, requester string) (*models.Queue, error) {
	closed := false
	return s.UpdateQueue(ctx, code, requester, models.QueuePatch{IsOpen: &closed})
}

// DeleteQueue removes the queue and its owner reference
func (s *Service) DeleteQueue(ctx context.Context, code, requester string) error {
	if !codegen.Valid(code) {
		return ErrQueueNotFound
	}
	err := s.withLock(ctx, code, func() error {
		return s.lifecycle.Delete(ctx, code, requester)
	})
	if err != nil {
		return err
	}
	s.publish(code, EventQueueDeleted, nil)
	return nil
}

// DispatchQueue serves the oldest open block. It returns nil when there was
// nothing to dispatch.
func (s *Service) DispatchQueue(ctx context.Context, code, requester string) (*models.Block, error) {
	if !codegen.Valid(code) {
		return nil, ErrQueueNotFound
	}
	var b *models.Block
	err := s.withLock(ctx, code, func() (err error) {
		b, err = s.lifecycle.Dispatch(ctx, code, requester)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishDispatch(code, b)
	return b, nil
}

// AutoDispatch dispatches the oldest full block of every queue that is not
// manually dispatched. Per-queue failures are logged and skipped.
func (s *Service) AutoDispatch(ctx context.Context) (int, error) {
	codes, err := s.store.Codes(ctx)
	if err != nil {
		return 0, translate(err)
	}

	dispatched := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return dispatched, err
		}
		var b *models.Block
		err := s.withLock(ctx, code, func() (err error) {
			b, err = s.lifecycle.DispatchFull(ctx, code)
			return err
		})
		if err != nil {
			s.log.Warn("auto-dispatch failed", "code", code, "error", err)
			continue
		}
		if b != nil {
			dispatched++
			s.publishDispatch(code, b)
		}
	}
	return dispatched, nil
}

// Reconcile repairs drift between the queue store and the owner registry
func (s *Service) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	return s.lifecycle.Reconcile(ctx, s.locks.Lock)
}

// DeleteProvider removes every queue the provider owns and empties the
// provider's code set. The provider record itself belongs to the caller.
func (s *Service) DeleteProvider(ctx context.Context, ownerID string) (int, error) {
	owner, err := s.registry.GetOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("lookup owner %s: %w", ownerID, err)
	}

	removed := 0
	for _, code := range owner.Codes() {
		deleted := false
		err := s.withLock(ctx, code, func() error {
			rec, err := s.store.Load(ctx, code)
			if err != nil {
				return translate(err)
			}
			if rec.OwnerID != ownerID {
				return nil
			}
			if err := s.store.Delete(ctx, code); err != nil {
				return translate(err)
			}
			deleted = true
			return nil
		})
		if err != nil && !errors.Is(err, ErrQueueNotFound) {
			return removed, err
		}
		if deleted {
			removed++
			s.publish(code, EventQueueDeleted, nil)
		}
	}

	if err := s.registry.SetOwnerQueueCodes(ctx, ownerID, nil); err != nil {
		return removed, fmt.Errorf("clear queue codes of %s: %w", ownerID, err)
	}
	s.log.Info("provider queues removed", "owner", ownerID, "queues", removed)
	return removed, nil
}

func (s *Service) withLock(ctx context.Context, code string, fn func() error) error {
	unlock, err := s.locks.Lock(ctx, code)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (s *Service) publishDispatch(code string, b *models.Block) {
	if b == nil {
		return
	}
	s.publish(code, EventBlockDispatched, map[string]any{
		"block_id": b.ID,
		"parties":  len(b.Parties),
		"people":   b.Occupancy(),
	})
}

func (s *Service) publish(code string, t EventType, data map[string]any) {
	s.events.Publish(Event{Type: t, QueueCode: code, Data: data, At: s.now().UTC()})
}
