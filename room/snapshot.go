package room

import (
	"excavation/game"
	"excavation/protocol"
)

func (r *Room) buildSnapshot() protocol.State {
	s := r.state
	snapshot := protocol.State{
		Tick:                s.Tick,
		Players:             r.playerSnapshots(),
		PartyMultiplier:     s.Session.PartyMultiplier,
		SacrificeCost:       s.Session.SacrificeCost,
		IsGameUnlocked:      s.Session.Unlocked,
		IsExpeditionStarted: s.Session.ExpeditionStarted,
		IsGameOver:          s.Session.GameOver,
		NextGoal:            s.NextGoal(),
		Thresholds:          make([]protocol.ThresholdSnapshot, 0, len(s.Milestones)),
	}
	for _, m := range s.Milestones {
		snapshot.Thresholds = append(snapshot.Thresholds, protocol.ThresholdSnapshot{
			Score:    m.Threshold,
			Position: m.Position,
			Revealed: m.Revealed,
		})
	}
	return snapshot
}

func (r *Room) playerSnapshots() map[string]protocol.PlayerSnapshot {
	out := make(map[string]protocol.PlayerSnapshot, len(r.state.Players))
	for id, p := range r.state.Players {
		out[id] = playerSnapshot(p)
	}
	return out
}

func playerSnapshot(p *game.Player) protocol.PlayerSnapshot {
	ps := protocol.PlayerSnapshot{
		Name:            p.Name,
		Score:           p.Score,
		TotalEarnedMass: p.TotalEarnedMass,

		Helpers:    p.Helpers,
		Tnt:        p.Tnt,
		Drills:     p.Drills,
		Excavators: p.Excavators,

		ClickPower:   p.ClickPower,
		CritChance:   p.CritChance,
		SynergyLevel: p.SynergyLevel,

		NextHelperCost:     p.NextCost[game.PurchaseHelper],
		NextTntCost:        p.NextCost[game.PurchaseTnt],
		NextHammerCost:     p.NextCost[game.PurchaseHammer],
		NextDrillCost:      p.NextCost[game.PurchaseDrill],
		NextExcavatorCost:  p.NextCost[game.PurchaseExcavator],
		NextPowerClickCost: p.NextCost[game.PurchasePowerClick],
		NextCritCost:       p.NextCost[game.PurchaseCrit],
		NextSynergyCost:    p.NextCost[game.PurchaseSynergy],

		TotalHelpers:        p.TotalHelpers,
		TotalTnt:            p.TotalTnt,
		TotalDrills:         p.TotalDrills,
		TotalExcavators:     p.TotalExcavators,
		TotalClickUpgrades:  p.TotalClickUpgrades,
		TotalHammerUpgrades: p.TotalHammerUpgrades,
		TotalClicks:         p.TotalClicks,
		Sacrifices:          p.Sacrifices,
		AttackCost:          p.AttackCostSpent,

		FoundSecret: p.FoundSecret,
		History:     make(map[string]protocol.AttackSnapshot, len(p.AttackHistory)),
	}
	for name, t := range p.AttackHistory {
		ps.History[name] = protocol.AttackSnapshot{
			Cracks:   t.Cracks,
			Flips:    t.Flips,
			Gremlins: t.Gremlins,
			Cats:     t.Cats,
		}
	}
	return ps
}
