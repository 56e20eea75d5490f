package lineitems

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator issues client-only row identifiers.
type IDGenerator interface {
	NextID() string
}

// Sequence issues "row-1", "row-2", ... and never repeats within one instance.
type Sequence struct {
	n atomic.Int64
}

// NextID implements IDGenerator.
func (s *Sequence) NextID() string {
	return "row-" + strconv.FormatInt(s.n.Add(1), 10)
}

// UUIDs issues random UUIDv4 identifiers.
type UUIDs struct{}

// NextID implements IDGenerator.
func (UUIDs) NextID() string {
	return uuid.NewString()
}
