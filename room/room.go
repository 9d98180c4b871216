package room

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"excavation/game"
	"excavation/protocol"
)

type Options struct {
	Catalog      *game.Catalog
	TickInterval time.Duration
	AdminToken   string // empty leaves the reset command open
	DevCommands  bool
	Logger       *log.Logger
	Rand         *rand.Rand
}

// Room is the single writer of the session. Commands and ticks are handled one
// at a time on the Run goroutine, so every game operation is atomic.
type Room struct {
	Inbox   chan any
	opts    Options
	state   *game.State
	clients map[string]Conn
	log     *log.Logger
	quit    chan struct{}
}

func New(opts Options) *Room {
	if opts.Catalog == nil {
		opts.Catalog = game.DefaultCatalog()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / protocol.TickHz
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Room{
		Inbox:   make(chan any, 256),
		opts:    opts,
		state:   game.NewState(opts.Catalog, opts.Rand),
		clients: make(map[string]Conn),
		log:     opts.Logger,
		quit:    make(chan struct{}),
	}
}

func (r *Room) Stop() {
	close(r.quit)
}

// Done is closed once Stop is called; Run no longer drains Inbox after that.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

func (r *Room) Run() {
	ticker := time.NewTicker(r.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			game.Step(r.state)
			r.flushEvents()
			r.broadcastState()
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		connID := uuid.NewString()
		r.clients[connID] = c.Conn
		r.log.Printf("connect %s", connID)
		r.sendTo(connID, protocol.MsgWelcome, protocol.Welcome{ConnID: connID, TickHz: r.tickHz()})
		r.sendTo(connID, protocol.MsgState, r.buildSnapshot())
		for _, m := range r.state.Revealed() {
			r.sendTo(connID, protocol.MsgCodePiece, protocol.CodePiece{Code: m.Code, Position: m.Position})
		}
		c.Reply <- ConnectResult{ConnID: connID}
	case Command:
		if _, ok := r.clients[c.ConnID]; !ok {
			return
		}
		h, ok := handlers[c.Env.T]
		if !ok {
			r.log.Printf("conn %s: unknown command %q", c.ConnID, c.Env.T)
			return
		}
		changed := h(r, c.ConnID, c.Env)
		r.flushEvents()
		if changed {
			r.broadcastState()
		}
	case Leave:
		r.handleLeave(c.ConnID)
	}
}

func (r *Room) handleLeave(connID string) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	r.log.Printf("disconnect %s", connID)
	delete(r.clients, connID)
	r.state.Disconnect(connID)
	_ = c.Close()
}

// reset swaps in a fresh session. Transport connections stay open; clients
// reload on forceRefresh and join again.
func (r *Room) reset() {
	r.state = game.NewState(r.opts.Catalog, r.opts.Rand)
	r.log.Println("session reset by admin")
	r.broadcast(protocol.MsgForceRefresh, protocol.Empty{})
}

func (r *Room) tickHz() int {
	hz := int(time.Second / r.opts.TickInterval)
	if hz <= 0 {
		hz = 1
	}
	return hz
}

// flushEvents fans the pending game events out to clients.
func (r *Room) flushEvents() {
	for _, ev := range r.state.Drain() {
		switch e := ev.(type) {
		case game.CodePieceRevealed:
			r.log.Printf("milestone revealed: %q at position %d", e.Code, e.Position)
			r.broadcast(protocol.MsgCodePiece, protocol.CodePiece{Code: e.Code, Position: e.Position})
		case game.ExpeditionBegan:
			r.log.Println("expedition started")
			r.broadcast(protocol.MsgGameUnlocked, protocol.Empty{})
		case game.Earthquake:
			r.log.Printf("%s sacrificed, multiplier now %g", e.Name, e.Multiplier)
			r.broadcast(protocol.MsgEarthquake, protocol.Earthquake{Name: e.Name, Multiplier: e.Multiplier})
		case game.Struck:
			r.sendTo(e.ConnID, strikeMessages[e.Kind], protocol.Empty{})
		case game.Announcement:
			r.broadcast(protocol.MsgAnnouncement, protocol.Announcement{
				Text:     e.Text,
				Duration: e.Duration.Milliseconds(),
				Priority: e.Priority,
			})
		case game.SessionEnded:
			r.log.Printf("game over, final code %q", e.FullCode)
			r.broadcast(protocol.MsgGameOver, protocol.GameOver{
				Players:  r.playerSnapshots(),
				FullCode: e.FullCode,
			})
		}
	}
}

var strikeMessages = map[game.AttackKind]string{
	game.AttackCrack:   protocol.MsgGotCracked,
	game.AttackCat:     protocol.MsgCatAttack,
	game.AttackFlip:    protocol.MsgGotFlipped,
	game.AttackGremlin: protocol.MsgGotGremlined,
}

func (r *Room) broadcastState() {
	r.broadcast(protocol.MsgState, r.buildSnapshot())
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Printf("encode %s: %v", t, err)
		return
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.handleLeave(id)
	}
}

// sendTo is fire-and-forget; an unknown connection is skipped.
func (r *Room) sendTo(connID, t string, payload any) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Printf("encode %s: %v", t, err)
		return
	}
	if err := c.Send(b); err != nil {
		r.handleLeave(connID)
	}
}
