// Package codegen produces the short codes that identify queues. Codes double
// as join tokens, so they come from crypto/rand.
package codegen

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math/big"
)

const (
	// Alphabet is the set of characters a code is drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of characters in a code
	Length = 6
)

// ErrExhausted is returned when every attempt produced a code already in use
var ErrExhausted = errors.New("codegen: no free code found")

// Generator draws codes uniformly from Alphabet.
type Generator struct {
	rand io.Reader
}

// New returns a generator reading from crypto/rand
func New() *Generator {
	return &Generator{rand: rand.Reader}
}

// NewWithReader returns a generator reading from r, for tests
func NewWithReader(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// NewCode returns a fresh random code
func (g *Generator) NewCode() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))
	buf := make([]byte, Length)
	for i := range buf {
		n, err := rand.Int(g.rand, max)
		if err != nil {
			return "", err
		}
		buf[i] = Alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Valid reports whether code has the shape of a generated code
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// Claim generates codes and hands each to claim until one is accepted.
// claim returns (false, nil) when the code is taken. After attempts
// rejections Claim returns ErrExhausted.
func (g *Generator) Claim(ctx context.Context, attempts int, claim func(ctx context.Context, code string) (bool, error)) (string, error) {
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := g.NewCode()
		if err != nil {
			return "", err
		}
		ok, err := claim(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", ErrExhausted
}
