package game

import (
	"fmt"
	"time"
)

const (
	announceShort = 5 * time.Second
	announceLong  = 10 * time.Second
)

// Unlock ends the tutorial. It reports whether anything changed.
func (s *State) Unlock() bool {
	if s.Session.Unlocked {
		return false
	}
	s.Session.Unlocked = true
	return true
}

// StartExpedition makes passive income and competition live.
func (s *State) StartExpedition() bool {
	if s.Session.ExpeditionStarted {
		return false
	}
	s.Session.ExpeditionStarted = true
	s.Session.Unlocked = true
	s.emit(ExpeditionBegan{})
	s.emit(Announcement{Text: "THE EXCAVATION HAS BEGUN!", Duration: announceLong, Priority: 3})
	return true
}

// Sacrifice trades p's build for a permanent party-wide multiplier boost.
func (s *State) Sacrifice(p *Player) bool {
	if p == nil || p.Score < s.Session.SacrificeCost {
		return false
	}
	k := s.Catalog.Constants
	s.Session.PartyMultiplier *= k.SacrificeMultiplierFactor
	s.Session.SacrificeCost *= k.SacrificeCostFactor
	p.Sacrifices++

	s.emit(Earthquake{Name: p.Name, Multiplier: s.Session.PartyMultiplier})
	s.emit(Announcement{
		Text:     fmt.Sprintf("%s triggered an EARTHQUAKE! (Multiplier x%s)", p.Name, formatMass(s.Session.PartyMultiplier)),
		Duration: announceShort,
		Priority: 3,
	})

	p.resetBuild(s.Catalog)
	s.EvaluateLadder()
	return true
}
