package models

import "time"

// Priority of a party. VIP is recorded but does not reorder packing.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityVIP    Priority = "vip"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p == PriorityNormal || p == PriorityVIP
}

// Party is a group asking to be admitted together.
type Party struct {
	ID          string    `json:"party_id"`
	DisplayName string    `json:"name"`
	Size        int       `json:"party_size"`
	Priority    Priority  `json:"priority"`
	JoinedAt    time.Time `json:"joined_at"`
}

// BlockStatus is the lifecycle state of a block.
type BlockStatus string

const (
	BlockOpen       BlockStatus = "open"
	BlockDispatched BlockStatus = "dispatched"
)

// Block is a capacity-bounded batch of parties served as a unit.
// sum(Parties[i].Size) never exceeds Capacity.
type Block struct {
	ID           string      `json:"block_id"`
	QueueCode    string      `json:"queue_code"`
	Capacity     int         `json:"capacity"`
	Parties      []Party     `json:"parties"`
	Status       BlockStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	DispatchedAt *time.Time  `json:"dispatched_at,omitempty"`
}

// Occupancy is the number of people currently placed in the block.
func (b *Block) Occupancy() int {
	total := 0
	for _, p := range b.Parties {
		total += p.Size
	}
	return total
}

// Fits reports whether a party of the given size can still be appended.
func (b *Block) Fits(size int) bool {
	return b.Status == BlockOpen && b.Occupancy()+size <= b.Capacity
}

// Full reports whether no capacity is left.
func (b *Block) Full() bool {
	return b.Occupancy() >= b.Capacity
}

// IndexOf returns the position of partyID in the block, or -1.
func (b *Block) IndexOf(partyID string) int {
	for i, p := range b.Parties {
		if p.ID == partyID {
			return i
		}
	}
	return -1
}
