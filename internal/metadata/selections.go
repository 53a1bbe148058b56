package metadata

import (
	"context"
	"sync"
)

// Ticket identifies one selection made by a session.
type Ticket struct {
	Session string
	Seq     uint64
}

type selection struct {
	seq    uint64
	cancel context.CancelFunc
}

// Selections tracks the latest in-flight resolution per session. Starting a
// new selection cancels the previous one, and a completion whose ticket is
// no longer current must be discarded by the caller.
type Selections struct {
	mu       sync.Mutex
	sessions map[string]*selection
	seq      uint64
}

// NewSelections returns an empty tracker.
func NewSelections() *Selections {
	return &Selections{sessions: make(map[string]*selection)}
}

// Begin cancels any in-flight selection for session and starts a new one
// whose context derives from parent.
func (s *Selections) Begin(parent context.Context, session string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions[session]; ok {
		prev.cancel()
	}

	s.seq++
	s.sessions[session] = &selection{seq: s.seq, cancel: cancel}

	return ctx, Ticket{Session: session, Seq: s.seq}
}

// Current reports whether t is the latest selection for its session.
func (s *Selections) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.sessions[t.Session]

	return ok && sel.seq == t.Seq
}

// Finish releases t. It returns true if t was still current, in which case
// the caller may deliver its result.
func (s *Selections) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, ok := s.sessions[t.Session]
	if !ok || sel.seq != t.Seq {
		return false
	}

	sel.cancel()
	delete(s.sessions, t.Session)

	return true
}

// End cancels whatever session has in flight and forgets it.
func (s *Selections) End(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sel, ok := s.sessions[session]; ok {
		sel.cancel()
		delete(s.sessions, session)
	}
}

// InFlight returns the number of sessions with a pending selection.
func (s *Selections) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}
