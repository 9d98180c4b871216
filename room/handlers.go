package room

import (
	"crypto/subtle"

	"excavation/game"
	"excavation/protocol"
)

// handler applies one command and reports whether clients need a fresh
// snapshot. Rejected gameplay commands are silent and report false.
type handler func(r *Room, connID string, env protocol.Envelope) bool

var handlers = map[string]handler{
	protocol.MsgJoin:            (*Room).handleJoin,
	protocol.MsgUnlock:          func(r *Room, _ string, _ protocol.Envelope) bool { return r.state.Unlock() },
	protocol.MsgStartExpedition: func(r *Room, _ string, _ protocol.Envelope) bool { return r.state.StartExpedition() },
	protocol.MsgClick:           (*Room).handleClick,
	protocol.MsgSacrifice:       withPlayer((*game.State).Sacrifice),
	protocol.MsgFoundHiddenCat:  withPlayer((*game.State).FindSecret),
	protocol.MsgAdminReset:      (*Room).handleAdminReset,
	protocol.MsgDevGrant:        (*Room).handleDevGrant,

	protocol.MsgPurchaseHelper:     purchase(game.PurchaseHelper),
	protocol.MsgPurchaseTnt:        purchase(game.PurchaseTnt),
	protocol.MsgPurchaseDrill:      purchase(game.PurchaseDrill),
	protocol.MsgPurchaseExcavator:  purchase(game.PurchaseExcavator),
	protocol.MsgPurchasePowerClick: purchase(game.PurchasePowerClick),
	protocol.MsgPurchaseCrit:       purchase(game.PurchaseCrit),
	protocol.MsgPurchaseSynergy:    purchase(game.PurchaseSynergy),
	protocol.MsgPurchaseHammer:     purchase(game.PurchaseHammer),

	protocol.MsgCrackPlayer:   attack(game.AttackCrack),
	protocol.MsgSendCat:       attack(game.AttackCat),
	protocol.MsgFlipPlayer:    attack(game.AttackFlip),
	protocol.MsgGremlinPlayer: attack(game.AttackGremlin),
}

func withPlayer(op func(*game.State, *game.Player) bool) handler {
	return func(r *Room, connID string, _ protocol.Envelope) bool {
		return op(r.state, r.state.PlayerByConn(connID))
	}
}

func purchase(k game.PurchaseKind) handler {
	return func(r *Room, connID string, _ protocol.Envelope) bool {
		return r.state.Purchase(r.state.PlayerByConn(connID), k)
	}
}

func attack(k game.AttackKind) handler {
	return func(r *Room, connID string, env protocol.Envelope) bool {
		target, err := protocol.DecodePayload[protocol.Target](env)
		if err != nil {
			r.log.Printf("conn %s: %v", connID, err)
			return false
		}
		return r.state.Attack(r.state.PlayerByConn(connID), target, k)
	}
}

func (r *Room) handleJoin(connID string, env protocol.Envelope) bool {
	req, err := protocol.DecodePayload[protocol.Join](env)
	if err != nil {
		r.log.Printf("conn %s: %v", connID, err)
		return false
	}
	p, ok := r.state.Join(connID, req.ID, req.Name)
	if !ok {
		return false
	}
	r.log.Printf("conn %s joined as %s (%q)", connID, p.ID, p.Name)
	return true
}

// Clicks are batched into the next tick broadcast.
func (r *Room) handleClick(connID string, _ protocol.Envelope) bool {
	r.state.Click(r.state.PlayerByConn(connID))
	return false
}

func (r *Room) handleAdminReset(connID string, env protocol.Envelope) bool {
	if r.opts.AdminToken != "" {
		req, err := protocol.DecodeOptional[protocol.AdminReset](env)
		if err != nil || subtle.ConstantTimeCompare([]byte(req.Token), []byte(r.opts.AdminToken)) != 1 {
			r.log.Printf("conn %s: admin reset refused", connID)
			return false
		}
	}
	r.reset()
	return false
}

func (r *Room) handleDevGrant(connID string, env protocol.Envelope) bool {
	if !r.opts.DevCommands {
		return false
	}
	amount, err := protocol.DecodePayload[protocol.DevGrant](env)
	if err != nil {
		r.log.Printf("conn %s: %v", connID, err)
		return false
	}
	return r.state.Grant(r.state.PlayerByConn(connID), amount)
}
