package dispatch

import "sync/atomic"

// Sequence issues monotonically increasing correlation ids, one per
// inbound connection, assigned before any asynchronous work begins.
// Ids carry no semantic meaning beyond log grouping. The zero value is
// ready to use.
type Sequence struct {
	n atomic.Uint64
}

// Next returns the next correlation id. Safe for concurrent use; ids
// follow connection acceptance order.
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}
