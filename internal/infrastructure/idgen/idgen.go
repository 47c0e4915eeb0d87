// Package idgen provides IDGenerator implementations.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// UUID generates random version 4 UUIDs.
type UUID struct{}

// NewID implements shared.IDGenerator.
func (UUID) NewID() string {
	return uuid.New().String()
}

// Sequence generates prefix-1, prefix-2, ... for deterministic tests and
// replays.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID implements shared.IDGenerator.
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}
