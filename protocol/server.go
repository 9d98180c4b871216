package protocol

type Welcome struct {
	ConnID string `json:"connId"`
	TickHz int    `json:"tickHz"`
}

type State struct {
	Tick                int                       `json:"tick"`
	Players             map[string]PlayerSnapshot `json:"players"`
	PartyMultiplier     float64                   `json:"partyMultiplier"`
	SacrificeCost       float64                   `json:"sacrificeCost"`
	IsGameUnlocked      bool                      `json:"isGameUnlocked"`
	IsExpeditionStarted bool                      `json:"isExpeditionStarted"`
	IsGameOver          bool                      `json:"isGameOver"`
	NextGoal            float64                   `json:"nextGoal"`
	Thresholds          []ThresholdSnapshot       `json:"thresholds"`
}

type PlayerSnapshot struct {
	Name            string  `json:"name"`
	Score           float64 `json:"score"`
	TotalEarnedMass float64 `json:"totalEarnedMass"`

	Helpers    int `json:"helpers"`
	Tnt        int `json:"tnt"`
	Drills     int `json:"drills"`
	Excavators int `json:"excavators"`

	ClickPower   int `json:"clickPower"`
	CritChance   int `json:"critChance"`
	SynergyLevel int `json:"synergyLevel"`

	NextHelperCost     float64 `json:"nextHelperCost"`
	NextTntCost        float64 `json:"nextTntCost"`
	NextHammerCost     float64 `json:"nextHammerCost"`
	NextDrillCost      float64 `json:"nextDrillCost"`
	NextExcavatorCost  float64 `json:"nextExcavatorCost"`
	NextPowerClickCost float64 `json:"nextPowerClickCost"`
	NextCritCost       float64 `json:"nextCritCost"`
	NextSynergyCost    float64 `json:"nextSynergyCost"`

	TotalHelpers        int     `json:"totalHelpers"`
	TotalTnt            int     `json:"totalTnt"`
	TotalDrills         int     `json:"totalDrills"`
	TotalExcavators     int     `json:"totalExcavators"`
	TotalClickUpgrades  int     `json:"totalClickUpgrades"`
	TotalHammerUpgrades int     `json:"totalHammerUpgrades"`
	TotalClicks         int     `json:"totalClicks"`
	Sacrifices          int     `json:"sacrifices"`
	AttackCost          float64 `json:"attackCost"`

	FoundSecret bool                      `json:"foundSecret"`
	History     map[string]AttackSnapshot `json:"history"`
}

type AttackSnapshot struct {
	Cracks   int `json:"cracks"`
	Flips    int `json:"flips"`
	Gremlins int `json:"gremlins"`
	Cats     int `json:"cats"`
}

type ThresholdSnapshot struct {
	Score    float64 `json:"score"`
	Position int     `json:"position"`
	Revealed bool    `json:"revealed"`
}

type CodePiece struct {
	Code     string `json:"code"`
	Position int    `json:"position"`
}

type Earthquake struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
}

type Announcement struct {
	Text     string `json:"text"`
	Duration int64  `json:"duration"` // milliseconds
	Priority int    `json:"priority"`
}

type GameOver struct {
	Players  map[string]PlayerSnapshot `json:"players"`
	FullCode string                    `json:"fullCode"`
}

// Empty is the payload of signal-only events.
type Empty struct{}
