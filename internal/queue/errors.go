package queue

import (
	"errors"
	"fmt"

	"queuely/internal/codegen"
	"queuely/internal/models"
	"queuely/internal/store"
)

var (
	ErrQueueNotFound           = errors.New("queue not found")
	ErrForbidden               = errors.New("forbidden: queue belongs to another service provider")
	ErrImmutableField          = errors.New("max_block_capacity cannot be changed, create a new queue instead")
	ErrPartyExceedsCapacity    = errors.New("party exceeds capacity")
	ErrCodeGenerationExhausted = errors.New("could not allocate a free queue code")
	ErrStoreUnavailable        = errors.New("queue store unavailable")
	ErrConcurrentModification  = errors.New("queue modified concurrently, retries exhausted")
	ErrQueueClosed             = errors.New("queue is closed")
	ErrInvalidParty            = errors.New("invalid party")
	ErrInvalidConfig           = errors.New("invalid queue configuration")
	ErrAlreadyJoined           = errors.New("party already waiting in this queue")
	ErrPartyNotFound           = errors.New("party not waiting in this queue")
	ErrOwnerNotFound           = models.ErrProviderNotFound
)

// translate maps store and codegen errors onto the queue taxonomy.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrQueueNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConcurrentModification
	case errors.Is(err, store.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, codegen.ErrExhausted):
		return ErrCodeGenerationExhausted
	default:
		return err
	}
}
