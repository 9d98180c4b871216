package game

import (
	"math/rand/v2"
	"sort"
	"strings"
	"unicode/utf8"
)

// Internal truth authoritative game state

type State struct {
	Catalog    *Catalog
	Session    Session
	Players    map[string]*Player // stable player id -> record
	Conns      map[string]string  // connection id -> stable player id
	Milestones []Milestone        // evaluation order, ascending threshold
	Tick       int

	rng     *rand.Rand
	pending []Event
}

type Session struct {
	PartyMultiplier   float64
	SacrificeCost     float64
	Unlocked          bool
	ExpeditionStarted bool
	GameOver          bool
}

type Milestone struct {
	MilestoneDef
	Revealed bool
}

type Player struct {
	ID   string
	Name string

	Score           float64
	TotalEarnedMass float64

	Helpers    int
	Tnt        int
	Drills     int
	Excavators int

	ClickPower   int
	CritChance   int
	SynergyLevel int

	NextCost [numPurchaseKinds]float64

	TotalHelpers        int
	TotalTnt            int
	TotalDrills         int
	TotalExcavators     int
	TotalClickUpgrades  int
	TotalHammerUpgrades int
	TotalClicks         int
	Sacrifices          int
	AttackCostSpent     float64

	FoundSecret   bool
	AttackHistory map[string]*AttackTally // keyed by target display name
}

type AttackTally struct {
	Cracks   int
	Flips    int
	Gremlins int
	Cats     int
}

// NewState returns a fresh session. A nil rng seeds one from the runtime.
func NewState(c *Catalog, rng *rand.Rand) *State {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &State{
		Catalog: c,
		Session: Session{
			PartyMultiplier: 1,
			SacrificeCost:   c.Constants.SacrificeBaseCost,
		},
		Players:    make(map[string]*Player),
		Conns:      make(map[string]string),
		Milestones: make([]Milestone, len(c.Milestones)),
		rng:        rng,
	}
	for i, def := range c.Milestones {
		s.Milestones[i] = Milestone{MilestoneDef: def}
	}
	sort.SliceStable(s.Milestones, func(i, j int) bool {
		return s.Milestones[i].Threshold < s.Milestones[j].Threshold
	})
	return s
}

func newPlayer(c *Catalog, id, name string) *Player {
	p := &Player{
		ID:            id,
		Name:          name,
		AttackHistory: make(map[string]*AttackTally),
	}
	p.resetBuild(c)
	return p
}

// resetBuild restores balance, inventory, stat levels and cost ladders.
// Identity, lifetime counters and attack history are left alone.
func (p *Player) resetBuild(c *Catalog) {
	p.Score = 0
	p.Helpers, p.Tnt, p.Drills, p.Excavators = 0, 0, 0, 0
	p.ClickPower = 1
	p.CritChance = 0
	p.SynergyLevel = 0
	for k := PurchaseKind(0); k < numPurchaseKinds; k++ {
		p.NextCost[k] = c.Upgrade(k).BaseCost
	}
}

// Join creates or re-identifies the record for playerID and binds connID to it.
// A player has at most one active connection; an older binding is dropped.
func (s *State) Join(connID, playerID, name string) (*Player, bool) {
	playerID = strings.TrimSpace(playerID)
	if connID == "" || playerID == "" {
		return nil, false
	}
	name = s.cleanName(name)

	for c, id := range s.Conns {
		if id == playerID && c != connID {
			delete(s.Conns, c)
		}
	}
	s.Conns[connID] = playerID

	p, ok := s.Players[playerID]
	if !ok {
		p = newPlayer(s.Catalog, playerID, name)
		s.Players[playerID] = p
		return p, true
	}
	p.Name = name
	return p, true
}

// Disconnect forgets the connection; the record stays for reconnects.
func (s *State) Disconnect(connID string) {
	delete(s.Conns, connID)
}

func (s *State) PlayerByConn(connID string) *Player {
	id, ok := s.Conns[connID]
	if !ok {
		return nil
	}
	return s.Players[id]
}

// ConnOf returns the active connection of playerID, if any.
func (s *State) ConnOf(playerID string) (string, bool) {
	for c, id := range s.Conns {
		if id == playerID {
			return c, true
		}
	}
	return "", false
}

func (s *State) TotalScore() float64 {
	total := 0.0
	for _, p := range s.Players {
		total += p.Score
	}
	return total
}

// SortedPlayerIDs gives a stable iteration order for snapshots and tests.
func (s *State) SortedPlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for id := range s.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *State) cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if utf8.RuneCountInString(name) > s.Catalog.Constants.NameMaxLen {
		name = string([]rune(name)[:s.Catalog.Constants.NameMaxLen])
	}
	return name
}

const DefaultName = "Miner"
