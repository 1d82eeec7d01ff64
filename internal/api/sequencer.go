package api

import "sync/atomic"

// Sequencer hands out monotonically increasing request numbers so a view can
// ignore responses that were overtaken by a newer request.
type Sequencer struct {
	issued  atomic.Uint64
	applied atomic.Uint64
}

// Next reserves the sequence number for a new request.
func (s *Sequencer) Next() uint64 {
	return s.issued.Add(1)
}

// Apply reports whether the response for seq may be applied. It returns
// false once a newer request has been issued or applied.
func (s *Sequencer) Apply(seq uint64) bool {
	if seq != s.issued.Load() {
		return false
	}
	for {
		cur := s.applied.Load()
		if cur >= seq {
			return false
		}
		if s.applied.CompareAndSwap(cur, seq) {
			return true
		}
	}
}

// Current returns the last issued sequence number.
func (s *Sequencer) Current() uint64 {
	return s.issued.Load()
}
