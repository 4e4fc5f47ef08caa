package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"queuely/internal/models"
	"queuely/internal/store"
)

// decodeQueue parses queue metadata. A queue whose own record is unreadable
// cannot be trusted, so it is reported as not found.
func decodeQueue(rec *store.Record) (*models.Queue, error) {
	var q models.Queue
	if err := json.Unmarshal(rec.Meta, &q); err != nil {
		return nil, fmt.Errorf("%w: corrupt metadata for %s: %v", ErrQueueNotFound, rec.Code, err)
	}
	if q.Code == "" {
		q.Code = rec.Code
	}
	return &q, nil
}

func encodeQueue(q *models.Queue) ([]byte, error) {
	return json.Marshal(q)
}

func decodeBlock(raw []byte) (*models.Block, error) {
	var b models.Block
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	if b.ID == "" || b.Capacity <= 0 {
		return nil, fmt.Errorf("block record missing id or capacity")
	}
	return &b, nil
}

func encodeBlock(b *models.Block) ([]byte, error) {
	return json.Marshal(b)
}

// sanitize lowercases s and keeps only letters, digits and spaces, so search
// terms match serialized metadata regardless of JSON punctuation.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}
