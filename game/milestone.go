package game

import (
	"sort"
	"strings"
)

// EvaluateLadder reveals every pending milestone the aggregate balance has
// reached. Revealing the last milestone in evaluation order ends the session.
func (s *State) EvaluateLadder() {
	total := s.TotalScore()
	last := len(s.Milestones) - 1
	for i := range s.Milestones {
		m := &s.Milestones[i]
		if m.Revealed || total < m.Threshold {
			continue
		}
		m.Revealed = true
		s.emit(CodePieceRevealed{Code: m.Code, Position: m.Position})

		if i == last && !s.Session.GameOver {
			s.Session.GameOver = true
			s.emit(SessionEnded{FullCode: s.FinalCode()})
		}
	}
}

// FinalCode joins every milestone code by display position.
func (s *State) FinalCode() string {
	ordered := make([]Milestone, len(s.Milestones))
	copy(ordered, s.Milestones)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	var b strings.Builder
	for _, m := range ordered {
		b.WriteString(m.Code)
	}
	return b.String()
}

// NextGoal is the first pending threshold, or 0 once the ladder is done.
func (s *State) NextGoal() float64 {
	for _, m := range s.Milestones {
		if !m.Revealed {
			return m.Threshold
		}
	}
	return 0
}

// Revealed lists revealed milestones in evaluation order.
func (s *State) Revealed() []Milestone {
	var out []Milestone
	for _, m := range s.Milestones {
		if m.Revealed {
			out = append(out, m)
		}
	}
	return out
}
