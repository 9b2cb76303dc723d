package web

import (
	"context"
	"sync"
)

// Sequencer orders overlapping filter requests for the same list. Starting a
// request cancels the one still in flight for the same key, and only the
// latest request's result is delivered.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]inflight
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]inflight)}
}

// Begin registers a new request for key and returns its context. done must be
// called once the result is ready; it reports whether the result is still the
// latest and may be delivered.
func (s *Sequencer) Begin(parent context.Context, key string) (context.Context, func() bool) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	s.next++
	seq := s.next
	if prev, ok := s.latest[key]; ok {
		prev.cancel()
	}
	s.latest[key] = inflight{seq: seq, cancel: cancel}
	s.mu.Unlock()

	done := func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer cancel()

		cur, ok := s.latest[key]
		if !ok || cur.seq != seq {
			return false
		}
		delete(s.latest, key)
		return true
	}
	return ctx, done
}
