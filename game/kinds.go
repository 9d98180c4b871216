package game

// PurchaseKind enumerates the upgrade shop. Costs and scales come from the
// catalog keyed by String(); the effect of a purchase lives in purchaseEffects.
type PurchaseKind uint8

const (
	PurchaseHelper PurchaseKind = iota
	PurchaseTnt
	PurchaseDrill
	PurchaseExcavator
	PurchasePowerClick
	PurchaseCrit
	PurchaseSynergy
	PurchaseHammer
	numPurchaseKinds
)

type purchaseEffect struct {
	name  string
	apply func(p *Player, k Constants)
}

var purchaseEffects = [numPurchaseKinds]purchaseEffect{
	PurchaseHelper:     {"helper", func(p *Player, _ Constants) { p.Helpers++; p.TotalHelpers++ }},
	PurchaseTnt:        {"tnt", func(p *Player, _ Constants) { p.Tnt++; p.TotalTnt++ }},
	PurchaseDrill:      {"drill", func(p *Player, _ Constants) { p.Drills++; p.TotalDrills++ }},
	PurchaseExcavator:  {"excavator", func(p *Player, _ Constants) { p.Excavators++; p.TotalExcavators++ }},
	PurchasePowerClick: {"powerClick", func(p *Player, _ Constants) { p.ClickPower++; p.TotalClickUpgrades++ }},
	PurchaseCrit:       {"crit", func(p *Player, _ Constants) { p.CritChance++ }},
	PurchaseSynergy:    {"synergy", func(p *Player, _ Constants) { p.SynergyLevel++ }},
	PurchaseHammer: {"hammer", func(p *Player, k Constants) {
		p.ClickPower += k.HammerPower
		p.TotalHammerUpgrades++
	}},
}

func (k PurchaseKind) String() string {
	if k >= numPurchaseKinds {
		return "unknown"
	}
	return purchaseEffects[k].name
}

func PurchaseKinds() []PurchaseKind {
	out := make([]PurchaseKind, 0, numPurchaseKinds)
	for k := PurchaseKind(0); k < numPurchaseKinds; k++ {
		out = append(out, k)
	}
	return out
}

// AttackKind enumerates sabotage actions, cheapest first.
type AttackKind uint8

const (
	AttackCrack AttackKind = iota
	AttackCat
	AttackFlip
	AttackGremlin
	numAttackKinds
)

type attackEffect struct {
	name string
	// announcement template: attacker, target
	line  string
	tally func(t *AttackTally)
}

var attackEffects = [numAttackKinds]attackEffect{
	AttackCrack:   {"crack", "%s smashed %s's screen!", func(t *AttackTally) { t.Cracks++ }},
	AttackCat:     {"cat", "%s sent a cat to %s!", func(t *AttackTally) { t.Cats++ }},
	AttackFlip:    {"flip", "%s flipped %s's world!", func(t *AttackTally) { t.Flips++ }},
	AttackGremlin: {"gremlin", "%s unleashed a fissure on %s!", func(t *AttackTally) { t.Gremlins++ }},
}

func (k AttackKind) String() string {
	if k >= numAttackKinds {
		return "unknown"
	}
	return attackEffects[k].name
}

func AttackKinds() []AttackKind {
	out := make([]AttackKind, 0, numAttackKinds)
	for k := AttackKind(0); k < numAttackKinds; k++ {
		out = append(out, k)
	}
	return out
}
