package models

import "time"

// DefaultBlockCapacity is used when a queue is created without a block capacity.
const DefaultBlockCapacity = 10

// Queue is the metadata record of a waitlist. Blocks and the block counter are
// stored under their own keys and are not part of this record.
type Queue struct {
	Code             string    `json:"code"`
	OwnerID          string    `json:"service_provider_id"`
	IsOpen           bool      `json:"is_open"`
	MaxBlockCapacity int       `json:"max_block_capacity"` // Неизменяемо после создания
	MaxPartyCapacity int       `json:"max_party_capacity"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	ImageURL         string    `json:"image_url,omitempty"`
	ManualDispatch   bool      `json:"manual_dispatch"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QueueConfig is the input of queue creation.
type QueueConfig struct {
	Name             string `json:"name" binding:"required,max=120"`
	Description      string `json:"description" binding:"max=1000"`
	ImageURL         string `json:"image_url" binding:"omitempty,url"`
	MaxBlockCapacity int    `json:"max_block_capacity" binding:"omitempty,min=1"`
	MaxPartyCapacity int    `json:"max_party_capacity" binding:"omitempty,min=1"`
	ManualDispatch   bool   `json:"manual_dispatch"`
}

// QueuePatch lists the fields an update may touch. Nil means "leave as is".
// MaxBlockCapacity is accepted only so that an attempt to change it can be
// rejected explicitly.
type QueuePatch struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	ImageURL         *string `json:"image_url"`
	IsOpen           *bool   `json:"is_open"`
	ManualDispatch   *bool   `json:"manual_dispatch"`
	MaxPartyCapacity *int    `json:"max_party_capacity"`
	MaxBlockCapacity *int    `json:"max_block_capacity"`
}

// QueueView is a queue with its counter and blocks, as returned to the owner.
type QueueView struct {
	Queue
	BlockCounter int64   `json:"block_counter"`
	Blocks       []Block `json:"blocks"`
}

// QueueStatus is the public summary of a queue.
type QueueStatus struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	IsOpen          bool   `json:"is_open"`
	OpenBlocks      int    `json:"open_blocks"`
	DispatchedCount int    `json:"dispatched_blocks"`
	WaitingParties  int    `json:"waiting_parties"`
	WaitingPeople   int    `json:"waiting_people"`
}
