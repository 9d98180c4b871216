package room

import "excavation/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Connect: issued once per accepted transport connection
type Connect struct {
	Conn  Conn
	Reply chan<- ConnectResult
}

type ConnectResult struct {
	ConnID string
}

// Command: one decoded client frame
type Command struct {
	ConnID string
	Env    protocol.Envelope
}

// Leave: issued on disconnect
type Leave struct {
	ConnID string
}
