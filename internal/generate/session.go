package generate

import (
	"fmt"
	"sync"

	"trainforge/internal/domain"
)

// State tracks where a session is in the upload-to-artifact flow.
type State string

const (
	StateIdle                 State = "idle"
	StateExtracting           State = "extracting"
	StateAwaitingOutputChoice State = "awaiting_output_choice"
	StateAutoSelecting        State = "auto_selecting"
	StateGenerating           State = "generating"
	StateReady                State = "ready"
	StateRefining             State = "refining"
)

// transitions lists the legal moves. Failure paths are handled by Fail,
// which returns to the last stable state rather than consulting this table.
var transitions = map[State][]State{
	StateIdle:                 {StateExtracting, StateRefining},
	StateExtracting:           {StateAwaitingOutputChoice},
	StateAwaitingOutputChoice: {StateAutoSelecting, StateGenerating},
	StateAutoSelecting:        {StateGenerating},
	StateGenerating:           {StateReady},
	StateReady:                {StateExtracting, StateRefining},
	StateRefining:             {StateReady},
}

// stable reports whether a state can be returned to after a failure.
func stable(s State) bool {
	return s == StateIdle || s == StateReady
}

// Session serializes the pipeline for a single process. Only one extraction,
// generation, or refinement runs at a time; a second caller gets ErrBusy
// instead of queueing.
type Session struct {
	mu     sync.Mutex
	state  State
	busy   bool
	resume State
}

// NewSession starts in the idle state.
func NewSession() *Session {
	return &Session{state: StateIdle, resume: StateIdle}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin claims the session for a new flow starting at next. It fails with
// ErrBusy when another flow is in progress, and rejects moves the transition
// table does not allow.
func (s *Session) Begin(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return fmt.Errorf("%w: %s in progress", domain.ErrBusy, s.state)
	}
	if err := s.advance(next); err != nil {
		return err
	}
	s.busy = true
	return nil
}

// Advance moves a claimed session to the next state in the same flow.
func (s *Session) Advance(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return fmt.Errorf("session: advance to %s without an active flow", next)
	}
	return s.advance(next)
}

func (s *Session) advance(next State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == next {
			if stable(s.state) {
				s.resume = s.state
			}
			s.state = next
			if stable(next) {
				s.resume = next
				s.busy = false
			}
			return nil
		}
	}
	return fmt.Errorf("session: illegal transition %s -> %s", s.state, next)
}

// Fail aborts the active flow and returns to the last stable state, so a
// failed refinement lands back on ready and a failed upload back on idle.
func (s *Session) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.resume
	s.busy = false
}
