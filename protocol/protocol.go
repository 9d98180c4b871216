package protocol

import (
	"encoding/json"
)

// Inbound commands.
const (
	MsgJoin            = "joinGame"
	MsgUnlock          = "unlockGame"
	MsgStartExpedition = "startExpedition"
	MsgClick           = "playerClick"
	MsgSacrifice       = "sacrificeForParty"
	MsgFoundHiddenCat  = "foundHiddenCat"
	MsgAdminReset      = "adminResetGame"
	MsgDevGrant        = "devGrantMass"

	MsgPurchaseHelper     = "purchaseHelper"
	MsgPurchaseTnt        = "purchaseTnt"
	MsgPurchaseDrill      = "purchaseDrill"
	MsgPurchaseExcavator  = "purchaseExcavator"
	MsgPurchasePowerClick = "purchasePowerClick"
	MsgPurchaseCrit       = "purchaseCrit"
	MsgPurchaseSynergy    = "purchaseSynergy"
	MsgPurchaseHammer     = "purchaseHammer"

	MsgCrackPlayer   = "crackPlayer"
	MsgSendCat       = "sendCat"
	MsgFlipPlayer    = "flipPlayer"
	MsgGremlinPlayer = "gremlinPlayer"
)

// Outbound events.
const (
	MsgWelcome      = "welcome"
	MsgState        = "gameStateUpdate"
	MsgCodePiece    = "unlockCodePiece"
	MsgGameUnlocked = "gameUnlocked"
	MsgEarthquake   = "earthquakeTriggered"
	MsgAnnouncement = "announcement"
	MsgGameOver     = "gameOver"
	MsgForceRefresh = "forceRefresh"

	MsgGotCracked   = "youGotCracked"
	MsgCatAttack    = "catAttack"
	MsgGotFlipped   = "youGotFlipped"
	MsgGotGremlined = "youGotGremlined"
)

const TickHz = 1

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"` // raw payload bytes
}
