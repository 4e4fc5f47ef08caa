package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"queuely/internal/logger"
	"queuely/internal/models"
	"queuely/internal/store"
)

// Admission is where a party was placed.
type Admission struct {
	PartyID   string `json:"party_id"`
	BlockID   string `json:"block_id"`
	Position  int    `json:"position"` // 1-based among open blocks
	Occupancy int    `json:"block_occupancy"`
	Capacity  int    `json:"block_capacity"`
	NewBlock  bool   `json:"new_block"`
}

// Packer places parties into blocks first-fit.
type Packer struct {
	store store.Store
	log   *logger.Logger
	now   func() time.Time
}

// NewPacker creates a packer over st
func NewPacker(st store.Store, log *logger.Logger, now func() time.Time) *Packer {
	if now == nil {
		now = time.Now
	}
	return &Packer{store: st, log: log.WithComponent("packer"), now: now}
}

// openBlock is a decoded open block and its index in the stored list.
type openBlock struct {
	index int
	block *models.Block
}

// Admit places party into the first open block with room, or into a new
// block when none has room. The whole read-decide-write cycle is one
// store.Apply, so concurrent admissions cannot overshoot a block.
func (p *Packer) Admit(ctx context.Context, code string, party models.Party) (*Admission, error) {
	if party.Size <= 0 {
		return nil, fmt.Errorf("%w: party_size must be positive, got %d", ErrInvalidParty, party.Size)
	}
	if party.Priority == "" {
		party.Priority = models.PriorityNormal
	}
	if !party.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidParty, party.Priority)
	}
	if party.ID == "" {
		party.ID = uuid.New().String()
	}
	party.JoinedAt = p.now().UTC()

	var result *Admission
	err := p.store.Apply(ctx, code, func(rec *store.Record) (*store.Mutation, error) {
		result = nil

		q, err := decodeQueue(rec)
		if err != nil {
			return nil, err
		}
		if !q.IsOpen {
			return nil, ErrQueueClosed
		}

		capacity := blockCapacity(rec, q)
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: queue %s has no block capacity", ErrQueueNotFound, code)
		}
		limit := capacity
		if q.MaxPartyCapacity > 0 && q.MaxPartyCapacity < limit {
			limit = q.MaxPartyCapacity
		}
		if party.Size > limit {
			return nil, fmt.Errorf("%w: party of %d, limit %d", ErrPartyExceedsCapacity, party.Size, limit)
		}

		open := p.openBlocks(code, rec)
		for _, ob := range open {
			if ob.block.IndexOf(party.ID) >= 0 {
				return nil, ErrAlreadyJoined
			}
		}

		for pos, ob := range open {
			if !ob.block.Fits(party.Size) {
				continue
			}
			ob.block.Parties = append(ob.block.Parties, party)
			raw, err := encodeBlock(ob.block)
			if err != nil {
				return nil, err
			}
			mut := &store.Mutation{}
			mut.SetBlock(ob.index, raw)
			result = &Admission{
				PartyID:   party.ID,
				BlockID:   ob.block.ID,
				Position:  pos + 1,
				Occupancy: ob.block.Occupancy(),
				Capacity:  ob.block.Capacity,
			}
			return mut, nil
		}

		// Nothing fits: open a new block. The counter increments in the same
		// transaction, so a retried cycle derives the id from the fresh value.
		counter := rec.BlockCounter + 1
		block := &models.Block{
			ID:        fmt.Sprintf("%s-%d", code, counter),
			QueueCode: code,
			Capacity:  capacity,
			Parties:   []models.Party{party},
			Status:    models.BlockOpen,
			CreatedAt: party.JoinedAt,
		}
		raw, err := encodeBlock(block)
		if err != nil {
			return nil, err
		}
		result = &Admission{
			PartyID:   party.ID,
			BlockID:   block.ID,
			Position:  len(open) + 1,
			Occupancy: party.Size,
			Capacity:  capacity,
			NewBlock:  true,
		}
		return &store.Mutation{CounterDelta: 1, AppendBlocks: [][]byte{raw}}, nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}

// Withdraw removes a waiting party from its open block.
func (p *Packer) Withdraw(ctx context.Context, code, partyID string) (*models.Block, error) {
	if partyID == "" {
		return nil, fmt.Errorf("%w: party_id is required", ErrInvalidParty)
	}

	var result *models.Block
	err := p.store.Apply(ctx, code, func(rec *store.Record) (*store.Mutation, error) {
		result = nil
		if _, err := decodeQueue(rec); err != nil {
			return nil, err
		}

		for _, ob := range p.openBlocks(code, rec) {
			i := ob.block.IndexOf(partyID)
			if i < 0 {
				continue
			}
			ob.block.Parties = append(ob.block.Parties[:i], ob.block.Parties[i+1:]...)
			raw, err := encodeBlock(ob.block)
			if err != nil {
				return nil, err
			}
			mut := &store.Mutation{}
			mut.SetBlock(ob.index, raw)
			result = ob.block
			return mut, nil
		}
		return nil, ErrPartyNotFound
	})
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}

// openBlocks decodes the open blocks of rec in insertion order. Records that
// do not decode are skipped and left untouched in the store.
func (p *Packer) openBlocks(code string, rec *store.Record) []openBlock {
	var open []openBlock
	for i, raw := range rec.Blocks {
		b, err := decodeBlock(raw)
		if err != nil {
			p.log.Warn("skipping malformed block", "code", code, "index", i, "error", err)
			continue
		}
		if b.Status == models.BlockOpen {
			open = append(open, openBlock{index: i, block: b})
		}
	}
	return open
}

func blockCapacity(rec *store.Record, q *models.Queue) int {
	if rec.BlockCapacity > 0 {
		return rec.BlockCapacity
	}
	return q.MaxBlockCapacity
}
