package game

// Step advances the session by one tick: passive income first, then the
// milestone ladder sees the new aggregate balance.
func Step(s *State) {
	s.Tick++
	s.applyPassive()
	s.EvaluateLadder()
}
