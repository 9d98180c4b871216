package room

import (
	"encoding/json"
	"io"
	"log"
	"math/rand/v2"
	"testing"
	"time"

	"excavation/protocol"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

func newTestRoom(t *testing.T, opts Options) *Room {
	t.Helper()
	if opts.TickInterval == 0 {
		opts.TickInterval = time.Hour // tests drive state through commands
	}
	opts.Logger = log.New(io.Discard, "", 0)
	opts.Rand = rand.New(rand.NewPCG(7, 7))
	r := New(opts)
	go r.Run()
	t.Cleanup(r.Stop)
	return r
}

func connect(t *testing.T, r *Room) (*fakeConn, string) {
	t.Helper()
	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan ConnectResult, 1)
	r.Inbox <- Connect{Conn: fc, Reply: reply}
	res := <-reply
	if res.ConnID == "" {
		t.Fatalf("expected connection id, got empty")
	}
	return fc, res.ConnID
}

func send(t *testing.T, r *Room, connID, msgType string, payload any) {
	t.Helper()
	env := protocol.Envelope{T: msgType}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		env.P = b
	}
	r.Inbox <- Command{ConnID: connID, Env: env}
}

// waitFor reads frames until one of msgType satisfies match.
func waitFor[T any](t *testing.T, fc *fakeConn, msgType string, match func(T) bool) T {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T != msgType {
				continue
			}
			v, err := protocol.DecodePayload[T](env)
			if err != nil {
				t.Fatalf("decode %s: %v", msgType, err)
			}
			if match == nil || match(v) {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %s", msgType)
			return zero
		}
	}
}

func joinAs(t *testing.T, r *Room, fc *fakeConn, connID, id, name string) {
	t.Helper()
	send(t, r, connID, protocol.MsgJoin, protocol.Join{ID: id, Name: name})
	waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool {
		_, ok := st.Players[id]
		return ok
	})
}

func TestRoomConnectSendsWelcomeAndState(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc, connID := connect(t, r)

	w := waitFor[protocol.Welcome](t, fc, protocol.MsgWelcome, nil)
	if w.ConnID != connID {
		t.Fatalf("welcome conn id = %q, want %q", w.ConnID, connID)
	}
	st := waitFor[protocol.State](t, fc, protocol.MsgState, nil)
	if st.PartyMultiplier != 1 || st.SacrificeCost != 7500 || st.NextGoal != 250000 {
		t.Fatalf("initial snapshot = %+v", st)
	}
	if len(st.Thresholds) != 4 {
		t.Fatalf("thresholds = %+v", st.Thresholds)
	}
}

func TestRoomTwoClientsSeeBothPlayers(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc1, c1 := connect(t, r)
	fc2, c2 := connect(t, r)
	if c1 == c2 {
		t.Fatalf("expected unique connection ids, got same: %q", c1)
	}

	joinAs(t, r, fc1, c1, "id-a", "a")
	joinAs(t, r, fc2, c2, "id-b", "b")

	st := waitFor(t, fc1, protocol.MsgState, func(st protocol.State) bool {
		return len(st.Players) == 2
	})
	if st.Players["id-a"].Name != "a" || st.Players["id-b"].Name != "b" {
		t.Fatalf("snapshot players = %+v", st.Players)
	}
}

func TestRoomPurchaseBroadcastsNewBalance(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")

	send(t, r, c, protocol.MsgDevGrant, 20)
	send(t, r, c, protocol.MsgPurchaseHelper, nil)

	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool {
		return st.Players["id-a"].Helpers == 1
	})
	p := st.Players["id-a"]
	if p.Score != 5 || p.NextHelperCost != 18 || p.TotalHelpers != 1 {
		t.Fatalf("after purchase: %+v", p)
	}
}

func TestRoomDevGrantDisabledByDefault(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")

	send(t, r, c, protocol.MsgDevGrant, 1000)
	send(t, r, c, protocol.MsgUnlock, nil)

	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if st.Players["id-a"].Score != 0 {
		t.Fatalf("dev grant applied while disabled: %v", st.Players["id-a"].Score)
	}
}

func TestRoomAttackReachesOnlyTarget(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fcA, cA := connect(t, r)
	fcB, cB := connect(t, r)
	fcC, cC := connect(t, r)
	joinAs(t, r, fcA, cA, "id-a", "alice")
	joinAs(t, r, fcB, cB, "id-b", "bob")
	joinAs(t, r, fcC, cC, "id-c", "carol")

	send(t, r, cA, protocol.MsgDevGrant, 1000)
	send(t, r, cA, protocol.MsgCrackPlayer, "id-b")

	waitFor[protocol.Empty](t, fcB, protocol.MsgGotCracked, nil)

	// carol sees the announcement and the new balance, never the effect
	sawAnnouncement := false
	timeout := time.After(time.Second)
	for {
		select {
		case b := <-fcC.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			switch env.T {
			case protocol.MsgGotCracked:
				t.Fatalf("bystander received the attack effect")
			case protocol.MsgAnnouncement:
				ann, _ := protocol.DecodePayload[protocol.Announcement](env)
				if ann.Text != "alice smashed bob's screen!" || ann.Duration != 5000 {
					t.Fatalf("announcement = %+v", ann)
				}
				sawAnnouncement = true
			case protocol.MsgState:
				st, _ := protocol.DecodePayload[protocol.State](env)
				if st.Players["id-a"].AttackCost != 100 {
					continue
				}
				if !sawAnnouncement {
					t.Fatalf("state arrived before the announcement")
				}
				if st.Players["id-a"].History["bob"].Cracks != 1 {
					t.Fatalf("history = %+v", st.Players["id-a"].History)
				}
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for attack broadcast")
		}
	}
}

func TestRoomSelfAttackIsSilent(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")

	send(t, r, c, protocol.MsgDevGrant, 1000)
	send(t, r, c, protocol.MsgGremlinPlayer, "id-a")
	send(t, r, c, protocol.MsgUnlock, nil)

	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if st.Players["id-a"].Score != 1000 {
		t.Fatalf("self attack changed score: %v", st.Players["id-a"].Score)
	}
}

func TestRoomSacrificeTriggersEarthquake(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")

	send(t, r, c, protocol.MsgDevGrant, 8000)
	send(t, r, c, protocol.MsgSacrifice, nil)

	q := waitFor[protocol.Earthquake](t, fc, protocol.MsgEarthquake, nil)
	if q.Name != "a" || q.Multiplier != 2 {
		t.Fatalf("earthquake = %+v", q)
	}
	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.PartyMultiplier == 2 })
	if st.SacrificeCost != 37500 || st.Players["id-a"].Score != 0 || st.Players["id-a"].Sacrifices != 1 {
		t.Fatalf("after sacrifice: %+v", st)
	}
}

func TestRoomStartExpedition(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc, c := connect(t, r)

	send(t, r, c, protocol.MsgStartExpedition, nil)
	waitFor[protocol.Empty](t, fc, protocol.MsgGameUnlocked, nil)
	ann := waitFor[protocol.Announcement](t, fc, protocol.MsgAnnouncement, nil)
	if ann.Duration != 10000 || ann.Priority != 3 {
		t.Fatalf("announcement = %+v", ann)
	}
	st := waitFor[protocol.State](t, fc, protocol.MsgState, nil)
	if !st.IsExpeditionStarted || !st.IsGameUnlocked {
		t.Fatalf("flags = %+v", st)
	}
}

func TestRoomLeaveKeepsRecord(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc1, c1 := connect(t, r)
	fc2, c2 := connect(t, r)
	joinAs(t, r, fc1, c1, "id-a", "a")

	r.Inbox <- Leave{ConnID: c1}
	send(t, r, c2, protocol.MsgUnlock, nil)

	st := waitFor(t, fc2, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if _, ok := st.Players["id-a"]; !ok {
		t.Fatalf("record dropped on disconnect")
	}
}

func TestRoomLateJoinerGetsRevealedPieces(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")
	send(t, r, c, protocol.MsgDevGrant, 300000)
	waitFor[protocol.CodePiece](t, fc, protocol.MsgCodePiece, nil)

	late, _ := connect(t, r)
	piece := waitFor[protocol.CodePiece](t, late, protocol.MsgCodePiece, nil)
	if piece.Code != "U" || piece.Position != 1 {
		t.Fatalf("replayed piece = %+v", piece)
	}
}

func TestRoomAdminResetRequiresToken(t *testing.T) {
	r := newTestRoom(t, Options{AdminToken: "s3cret"})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")

	send(t, r, c, protocol.MsgAdminReset, protocol.AdminReset{Token: "wrong"})
	send(t, r, c, protocol.MsgAdminReset, nil)
	send(t, r, c, protocol.MsgUnlock, nil)
	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if len(st.Players) != 1 {
		t.Fatalf("refused reset wiped players: %+v", st.Players)
	}

	send(t, r, c, protocol.MsgAdminReset, protocol.AdminReset{Token: "s3cret"})
	waitFor[protocol.Empty](t, fc, protocol.MsgForceRefresh, nil)

	send(t, r, c, protocol.MsgUnlock, nil)
	st = waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if len(st.Players) != 0 || st.PartyMultiplier != 1 {
		t.Fatalf("reset left state behind: %+v", st)
	}
}

func TestRoomIgnoresCommandsFromUnknownConnections(t *testing.T) {
	r := newTestRoom(t, Options{})
	fc, c := connect(t, r)

	send(t, r, "ghost", protocol.MsgStartExpedition, nil)
	send(t, r, c, protocol.MsgUnlock, nil)
	st := waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool { return st.IsGameUnlocked })
	if st.IsExpeditionStarted {
		t.Fatalf("command from unknown connection applied")
	}
}

type slowConn struct {
	sendCh chan []byte
	block  chan struct{}
}

func (s *slowConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sendCh <- cp
	<-s.block // block until released
	return nil
}
func (s *slowConn) Close() error { return nil }

func TestRoomBroadcastDoesNotDeadlockOnSlowConn(t *testing.T) {
	r := newTestRoom(t, Options{TickInterval: 20 * time.Millisecond})

	sc := &slowConn{
		sendCh: make(chan []byte, 1),
		block:  make(chan struct{}),
	}
	reply := make(chan ConnectResult, 1)
	r.Inbox <- Connect{Conn: sc, Reply: reply}

	select {
	case <-sc.sendCh:
		// release every send so room can proceed
		close(sc.block)
	case <-time.After(1 * time.Second):
		t.Fatalf("expected at least one send; possible deadlock")
	}
	go func() {
		for range sc.sendCh {
		}
	}()
	select {
	case <-reply:
	case <-time.After(1 * time.Second):
		t.Fatalf("connect never completed")
	}
}

func TestRoomTickBroadcastRate(t *testing.T) {
	r := newTestRoom(t, Options{TickInterval: 50 * time.Millisecond})
	fc, _ := connect(t, r)

	deadline := time.After(300 * time.Millisecond)
	ticks := map[int]bool{}

	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.T != protocol.MsgState {
				continue
			}
			st, _ := protocol.DecodePayload[protocol.State](env)
			ticks[st.Tick] = true
		case <-deadline:
			// 20Hz for 0.3s => ~6 ticks; accept a wide range to avoid flakes.
			if len(ticks) < 2 || len(ticks) > 12 {
				t.Fatalf("unexpected distinct ticks in 300ms: %d", len(ticks))
			}
			return
		}
	}
}

func TestRoomTickPaysPassiveIncome(t *testing.T) {
	r := newTestRoom(t, Options{TickInterval: 20 * time.Millisecond, DevCommands: true})
	fc, c := connect(t, r)
	joinAs(t, r, fc, c, "id-a", "a")
	send(t, r, c, protocol.MsgDevGrant, 15)
	send(t, r, c, protocol.MsgPurchaseHelper, nil)
	send(t, r, c, protocol.MsgStartExpedition, nil)

	waitFor(t, fc, protocol.MsgState, func(st protocol.State) bool {
		p := st.Players["id-a"]
		return p.Helpers == 1 && p.Score >= 3
	})
}

// collectUntil returns every frame up to and including the first one done accepts.
func collectUntil(t *testing.T, fc *fakeConn, done func(protocol.Envelope) bool) []protocol.Envelope {
	t.Helper()
	var frames []protocol.Envelope
	timeout := time.After(time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			frames = append(frames, env)
			if done(env) {
				return frames
			}
		case <-timeout:
			t.Fatalf("timed out after %d frames", len(frames))
			return nil
		}
	}
}

func stateWhere(match func(protocol.State) bool) func(protocol.Envelope) bool {
	return func(env protocol.Envelope) bool {
		if env.T != protocol.MsgState {
			return false
		}
		st, err := protocol.DecodePayload[protocol.State](env)
		return err == nil && match(st)
	}
}

func TestRoomGameOverBroadcastOnce(t *testing.T) {
	r := newTestRoom(t, Options{DevCommands: true})
	fcA, cA := connect(t, r)
	fcB, cB := connect(t, r)
	joinAs(t, r, fcA, cA, "id-a", "alice")
	joinAs(t, r, fcB, cB, "id-b", "bob")

	send(t, r, cA, protocol.MsgDevGrant, 3e11)
	over := waitFor[protocol.GameOver](t, fcB, protocol.MsgGameOver, nil)
	if over.FullCode != "TURD" {
		t.Fatalf("full code = %q, want TURD", over.FullCode)
	}
	if len(over.Players) != 2 || over.Players["id-a"].Score != 3e11 || over.Players["id-b"].Name != "bob" {
		t.Fatalf("game over players = %+v", over.Players)
	}

	send(t, r, cA, protocol.MsgDevGrant, 1e12)
	send(t, r, cA, protocol.MsgUnlock, nil)
	frames := collectUntil(t, fcB, stateWhere(func(st protocol.State) bool { return st.IsGameUnlocked }))
	for _, env := range frames {
		if env.T == protocol.MsgGameOver {
			t.Fatalf("gameOver broadcast twice")
		}
	}
	st, _ := protocol.DecodePayload[protocol.State](frames[len(frames)-1])
	if !st.IsGameOver {
		t.Fatalf("session no longer over: %+v", st)
	}
}

func TestRoomAttackKindsRouteEffectAndTally(t *testing.T) {
	effects := []string{protocol.MsgGotCracked, protocol.MsgCatAttack, protocol.MsgGotFlipped, protocol.MsgGotGremlined}
	tests := []struct {
		cmd    string
		effect string
		cost   float64
		text   string
		tally  func(protocol.AttackSnapshot) int
	}{
		{protocol.MsgCrackPlayer, protocol.MsgGotCracked, 100, "alice smashed bob's screen!",
			func(a protocol.AttackSnapshot) int { return a.Cracks }},
		{protocol.MsgSendCat, protocol.MsgCatAttack, 250, "alice sent a cat to bob!",
			func(a protocol.AttackSnapshot) int { return a.Cats }},
		{protocol.MsgFlipPlayer, protocol.MsgGotFlipped, 500, "alice flipped bob's world!",
			func(a protocol.AttackSnapshot) int { return a.Flips }},
		{protocol.MsgGremlinPlayer, protocol.MsgGotGremlined, 750, "alice unleashed a fissure on bob!",
			func(a protocol.AttackSnapshot) int { return a.Gremlins }},
	}
	for _, tc := range tests {
		t.Run(tc.cmd, func(t *testing.T) {
			r := newTestRoom(t, Options{DevCommands: true})
			fcA, cA := connect(t, r)
			fcB, cB := connect(t, r)
			fcC, cC := connect(t, r)
			joinAs(t, r, fcA, cA, "id-a", "alice")
			joinAs(t, r, fcB, cB, "id-b", "bob")
			joinAs(t, r, fcC, cC, "id-c", "carol")

			send(t, r, cA, protocol.MsgDevGrant, 1000)
			send(t, r, cA, tc.cmd, "id-b")
			charged := stateWhere(func(st protocol.State) bool { return st.Players["id-a"].AttackCost == tc.cost })

			var got []string
			for _, env := range collectUntil(t, fcB, charged) {
				for _, e := range effects {
					if env.T == e {
						got = append(got, e)
					}
				}
			}
			if len(got) != 1 || got[0] != tc.effect {
				t.Fatalf("target effects = %v, want [%s]", got, tc.effect)
			}

			frames := collectUntil(t, fcC, charged)
			var ann protocol.Announcement
			for _, env := range frames {
				for _, e := range effects {
					if env.T == e {
						t.Fatalf("bystander received %s", e)
					}
				}
				if env.T == protocol.MsgAnnouncement {
					ann, _ = protocol.DecodePayload[protocol.Announcement](env)
				}
			}
			if ann.Text != tc.text || ann.Priority != 1 {
				t.Fatalf("announcement = %+v, want %q", ann, tc.text)
			}

			st, _ := protocol.DecodePayload[protocol.State](frames[len(frames)-1])
			a := st.Players["id-a"]
			h := a.History["bob"]
			if tc.tally(h) != 1 || h.Cracks+h.Cats+h.Flips+h.Gremlins != 1 {
				t.Fatalf("history = %+v", a.History)
			}
			if a.Score != 1000-tc.cost {
				t.Fatalf("attacker score = %v, want %v", a.Score, 1000-tc.cost)
			}
		})
	}
}
