package verify

import (
	"context"
	"errors"
	"sync"
)

type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// ErrBusy is returned when a session already has an analysis in flight.
var ErrBusy = errors.New("an analysis is already in progress")

// Session runs at most one analysis at a time. Callers use State to tell
// when a new submission will be accepted.
type Session struct {
	checker *Checker

	mu      sync.Mutex
	pending bool
}

func NewSession(checker *Checker) *Session {
	return &Session{checker: checker}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return Pending
	}
	return Idle
}

func (s *Session) Verify(ctx context.Context, source string) (*Report, error) {
	if !s.begin() {
		return nil, ErrBusy
	}
	defer s.end()
	return s.checker.Verify(ctx, source)
}

func (s *Session) Equivalence(ctx context.Context, first, second string) (*Report, error) {
	if !s.begin() {
		return nil, ErrBusy
	}
	defer s.end()
	return s.checker.Equivalence(ctx, first, second)
}

func (s *Session) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending {
		return false
	}
	s.pending = true
	return true
}

func (s *Session) end() {
	s.mu.Lock()
	s.pending = false
	s.mu.Unlock()
}
