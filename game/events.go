package game

import "time"

// Event is something the room must tell clients about. Operations append
// events to the state; the owner drains them after each command or tick.
type Event interface {
	event()
}

type CodePieceRevealed struct {
	Code     string
	Position int
}

type ExpeditionBegan struct{}

type Earthquake struct {
	Name       string
	Multiplier float64
}

// Struck is addressed to the target's connection only.
type Struck struct {
	ConnID string
	Kind   AttackKind
}

type Announcement struct {
	Text     string
	Duration time.Duration
	Priority int
}

type SessionEnded struct {
	FullCode string
}

func (CodePieceRevealed) event() {}
func (ExpeditionBegan) event()   {}
func (Earthquake) event()        {}
func (Struck) event()            {}
func (Announcement) event()      {}
func (SessionEnded) event()      {}

func (s *State) emit(e Event) {
	s.pending = append(s.pending, e)
}

// Drain hands over the pending events in emission order.
func (s *State) Drain() []Event {
	out := s.pending
	s.pending = nil
	return out
}
