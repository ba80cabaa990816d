package startpage

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces collection-unique identifiers for new entities.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a new UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequenceGenerator issues monotonically increasing ids with an optional prefix.
// It is safe for concurrent use.
type SequenceGenerator struct {
	Prefix string
	next   atomic.Int64
}

// NewID returns the next id in the sequence, starting at 1.
func (g *SequenceGenerator) NewID() string {
	return g.Prefix + strconv.FormatInt(g.next.Add(1), 10)
}
