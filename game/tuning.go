package game

import (
	"fmt"
	"math"
)

// Catalog is the static economy table. It is loaded once at startup and never
// mutated afterwards; every State built from it shares the same pointer.
type Catalog struct {
	Upgrades   map[string]Upgrade `yaml:"upgrades" json:"upgrades" jsonschema:"description=Purchasable upgrades keyed by kind name"`
	Attacks    map[string]float64 `yaml:"attacks" json:"attacks" jsonschema:"description=Attack prices keyed by kind name"`
	Constants  Constants          `yaml:"constants" json:"constants"`
	Milestones []MilestoneDef     `yaml:"milestones" json:"milestones" jsonschema:"minItems=1,description=Ladder in evaluation order"`
}

type Upgrade struct {
	BaseCost float64 `yaml:"base_cost" json:"base_cost"`
	Scale    float64 `yaml:"scale" json:"scale" jsonschema:"minimum=1"`
	Yield    float64 `yaml:"yield,omitempty" json:"yield,omitempty" jsonschema:"minimum=0,description=Passive income per owned unit per tick"`
}

type Constants struct {
	SynergyPerLevel           float64 `yaml:"synergy_per_level" json:"synergy_per_level"`
	HiddenCatBase             float64 `yaml:"hidden_cat_base" json:"hidden_cat_base"`
	CritChanceCap             float64 `yaml:"crit_chance_cap" json:"crit_chance_cap"`
	CritMultiplier            float64 `yaml:"crit_multiplier" json:"crit_multiplier"`
	HammerPower               int     `yaml:"hammer_power" json:"hammer_power"`
	LobbyClickGrace           float64 `yaml:"lobby_click_grace" json:"lobby_click_grace"`
	SacrificeBaseCost         float64 `yaml:"sacrifice_base_cost" json:"sacrifice_base_cost"`
	SacrificeMultiplierFactor float64 `yaml:"sacrifice_multiplier_factor" json:"sacrifice_multiplier_factor"`
	SacrificeCostFactor       float64 `yaml:"sacrifice_cost_factor" json:"sacrifice_cost_factor"`
	NameMaxLen                int     `yaml:"name_max_len" json:"name_max_len"`
}

type MilestoneDef struct {
	Threshold float64 `yaml:"score" json:"score"`
	Code      string  `yaml:"code" json:"code" jsonschema:"minLength=1"`
	Position  int     `yaml:"position" json:"position" jsonschema:"minimum=0"`
}

// Upgrade returns the cost ladder for k. Validate guarantees presence.
func (c *Catalog) Upgrade(k PurchaseKind) Upgrade {
	return c.Upgrades[k.String()]
}

func (c *Catalog) AttackCost(k AttackKind) float64 {
	return c.Attacks[k.String()]
}

// Validate checks the semantic rules a schema can't express.
func (c *Catalog) Validate() error {
	for k := PurchaseKind(0); k < numPurchaseKinds; k++ {
		u, ok := c.Upgrades[k.String()]
		if !ok {
			return fmt.Errorf("upgrades: missing %q", k)
		}
		if !positive(u.BaseCost) {
			return fmt.Errorf("upgrades.%s: base_cost must be > 0", k)
		}
		if !finite(u.Scale) || u.Scale < 1 {
			return fmt.Errorf("upgrades.%s: scale must be >= 1", k)
		}
		if !finite(u.Yield) || u.Yield < 0 {
			return fmt.Errorf("upgrades.%s: yield must be >= 0", k)
		}
	}
	for k := AttackKind(0); k < numAttackKinds; k++ {
		cost, ok := c.Attacks[k.String()]
		if !ok {
			return fmt.Errorf("attacks: missing %q", k)
		}
		if !positive(cost) {
			return fmt.Errorf("attacks.%s: cost must be > 0", k)
		}
	}

	k := c.Constants
	if k.CritChanceCap < 0 || k.CritChanceCap > 100 {
		return fmt.Errorf("constants.crit_chance_cap: %v out of [0,100]", k.CritChanceCap)
	}
	if !positive(k.CritMultiplier) || !positive(k.SacrificeBaseCost) || !positive(k.HiddenCatBase) {
		return fmt.Errorf("constants: crit_multiplier, sacrifice_base_cost and hidden_cat_base must be > 0")
	}
	if k.SacrificeMultiplierFactor < 1 || k.SacrificeCostFactor < 1 {
		return fmt.Errorf("constants: sacrifice factors must be >= 1")
	}
	if k.SynergyPerLevel < 0 || k.LobbyClickGrace < 0 || k.HammerPower < 0 {
		return fmt.Errorf("constants: negative tuning value")
	}
	if k.NameMaxLen <= 0 {
		return fmt.Errorf("constants.name_max_len must be > 0")
	}

	if len(c.Milestones) == 0 {
		return fmt.Errorf("milestones: empty ladder")
	}
	seen := make([]bool, len(c.Milestones))
	for i, m := range c.Milestones {
		if !positive(m.Threshold) {
			return fmt.Errorf("milestones[%d]: score must be > 0", i)
		}
		if i > 0 && m.Threshold <= c.Milestones[i-1].Threshold {
			return fmt.Errorf("milestones[%d]: score %v not above previous %v", i, m.Threshold, c.Milestones[i-1].Threshold)
		}
		if m.Code == "" {
			return fmt.Errorf("milestones[%d]: empty code", i)
		}
		if m.Position < 0 || m.Position >= len(c.Milestones) || seen[m.Position] {
			return fmt.Errorf("milestones[%d]: position %d is not a free slot in 0..%d", i, m.Position, len(c.Milestones)-1)
		}
		seen[m.Position] = true
	}
	return nil
}

// DefaultCatalog is the canonical balance table.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Upgrades: map[string]Upgrade{
			"helper":     {BaseCost: 15, Scale: 1.15, Yield: 1},
			"tnt":        {BaseCost: 250, Scale: 1.15, Yield: 10},
			"drill":      {BaseCost: 1000, Scale: 1.15, Yield: 50},
			"excavator":  {BaseCost: 15000, Scale: 1.15, Yield: 500},
			"powerClick": {BaseCost: 25, Scale: 1.15},
			"crit":       {BaseCost: 500, Scale: 1.30},
			"synergy":    {BaseCost: 10000, Scale: 1.50},
			"hammer":     {BaseCost: 500, Scale: 1.50},
		},
		Attacks: map[string]float64{
			"crack":   100,
			"cat":     250,
			"flip":    500,
			"gremlin": 750,
		},
		Constants: Constants{
			SynergyPerLevel:           0.02,
			HiddenCatBase:             50000,
			CritChanceCap:             50,
			CritMultiplier:            10,
			HammerPower:               10,
			LobbyClickGrace:           100,
			SacrificeBaseCost:         7500,
			SacrificeMultiplierFactor: 2,
			SacrificeCostFactor:       5,
			NameMaxLen:                15,
		},
		Milestones: []MilestoneDef{
			{Threshold: 250_000, Code: "U", Position: 1},
			{Threshold: 25_000_000, Code: "D", Position: 3},
			{Threshold: 2_500_000_000, Code: "R", Position: 2},
			{Threshold: 250_000_000_000, Code: "T", Position: 0},
		},
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
