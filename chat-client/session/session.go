package session

import "github.com/google/uuid"

// Session is the per-join state of the client. The zero value is a logged-out session.
type Session struct {
	ID       uuid.UUID
	Username string
	State    State
}

// Begin records the nickname and moves to Connecting. It reports false when a
// connection is already being made or held.
func (s *Session) Begin(username string) (Effect, bool) {
	effects, ok := s.Apply(Join)
	if !ok {
		return 0, false
	}
	s.ID = uuid.New()
	s.Username = username
	return effects, true
}

// Apply runs t through the transition table. Returning to Disconnected clears the
// nickname and id.
func (s *Session) Apply(t Trigger) (Effect, bool) {
	next, effects, ok := Transition(s.State, t)
	if !ok {
		return 0, false
	}
	s.State = next
	if next == Disconnected {
		s.ID = uuid.Nil
		s.Username = ""
	}
	return effects, true
}

// Connected reports whether outgoing messages may be sent.
func (s *Session) Connected() bool { return s.State == Connected }
