package game

import (
	"fmt"
	"math"
)

// passiveBase is the per-tick yield of a player's production inventory
// before the party multiplier.
func (s *State) passiveBase(p *Player) float64 {
	c := s.Catalog
	return float64(p.Helpers)*c.Upgrade(PurchaseHelper).Yield +
		float64(p.Tnt)*c.Upgrade(PurchaseTnt).Yield +
		float64(p.Drills)*c.Upgrade(PurchaseDrill).Yield +
		float64(p.Excavators)*c.Upgrade(PurchaseExcavator).Yield
}

// canMine allows clicks during the tutorial, during the expedition, and in the
// lobby for players still under the grace balance.
func (s *State) canMine(p *Player) bool {
	if s.Session.GameOver {
		return false
	}
	return s.Session.ExpeditionStarted || !s.Session.Unlocked || p.Score < s.Catalog.Constants.LobbyClickGrace
}

// Click resolves one tap. It reports the credited value, or false when the
// tap was ignored.
func (s *State) Click(p *Player) (float64, bool) {
	if p == nil || !s.canMine(p) {
		return 0, false
	}
	k := s.Catalog.Constants
	p.TotalClicks++

	synergyBonus := s.passiveBase(p) * float64(p.SynergyLevel) * k.SynergyPerLevel
	hit := (float64(p.ClickPower) + synergyBonus) * s.Session.PartyMultiplier

	chance := math.Min(k.CritChanceCap, float64(p.CritChance))
	if s.rng.Float64()*100 < chance {
		hit *= k.CritMultiplier
	}
	if !finite(hit) || hit < 0 {
		hit = 1
	}
	p.credit(hit)
	return hit, true
}

// Purchase buys one unit of k. Insufficient funds is a silent no-op.
func (s *State) Purchase(p *Player, k PurchaseKind) bool {
	if p == nil || k >= numPurchaseKinds {
		return false
	}
	cost := p.NextCost[k]
	if p.Score < cost {
		return false
	}
	p.Score -= cost
	purchaseEffects[k].apply(p, s.Catalog.Constants)
	p.NextCost[k] = math.Ceil(cost * s.Catalog.Upgrade(k).Scale)
	return true
}

// applyPassive credits one tick of production to every player.
func (s *State) applyPassive() {
	if !s.Session.ExpeditionStarted || s.Session.GameOver {
		return
	}
	for _, p := range s.Players {
		gain := s.passiveBase(p) * s.Session.PartyMultiplier
		if finite(gain) && gain > 0 {
			p.credit(gain)
		}
	}
}

// FindSecret grants the one-shot discovery bonus.
func (s *State) FindSecret(p *Player) bool {
	if p == nil || p.FoundSecret {
		return false
	}
	p.FoundSecret = true
	bonus := s.Catalog.Constants.HiddenCatBase * s.Session.PartyMultiplier
	if !finite(bonus) {
		bonus = 1
	}
	p.credit(bonus)
	s.emit(Announcement{
		Text:     fmt.Sprintf("%s found a secret fossil stash! (+%s)", p.Name, formatMass(bonus)),
		Duration: announceShort,
		Priority: 2,
	})
	s.EvaluateLadder()
	return true
}

// Grant is the developer shortcut for adding mass directly.
func (s *State) Grant(p *Player, amount float64) bool {
	if p == nil || !positive(amount) {
		return false
	}
	p.credit(amount)
	s.EvaluateLadder()
	return true
}

func (p *Player) credit(v float64) {
	p.Score += v
	p.TotalEarnedMass += v
}

func formatMass(v float64) string {
	v = math.Round(v)
	neg := v < 0
	digits := fmt.Sprintf("%.0f", math.Abs(v))
	out := make([]byte, 0, len(digits)+len(digits)/3)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
