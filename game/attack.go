package game

import "fmt"

// Attack spends the attacker's balance to harass target. Unknown players,
// self-targeting and insufficient funds are silent no-ops.
func (s *State) Attack(attacker *Player, targetID string, k AttackKind) bool {
	if attacker == nil || k >= numAttackKinds {
		return false
	}
	target, ok := s.Players[targetID]
	if !ok || target.ID == attacker.ID {
		return false
	}
	cost := s.Catalog.AttackCost(k)
	if attacker.Score < cost {
		return false
	}

	attacker.Score -= cost
	attacker.AttackCostSpent += cost

	tally, ok := attacker.AttackHistory[target.Name]
	if !ok {
		tally = &AttackTally{}
		attacker.AttackHistory[target.Name] = tally
	}
	eff := attackEffects[k]
	eff.tally(tally)

	if conn, ok := s.ConnOf(target.ID); ok {
		s.emit(Struck{ConnID: conn, Kind: k})
	}
	s.emit(Announcement{
		Text:     fmt.Sprintf(eff.line, attacker.Name, target.Name),
		Duration: announceShort,
		Priority: 1,
	})
	return true
}
