package protocol

//input structs coming in from the client.

type Join struct {
	Name string `json:"name"`
	ID   string `json:"id"` // stable across reconnects, generated client side
}

// Attack commands carry the target's stable id as a bare JSON string.
type Target = string

type AdminReset struct {
	Token string `json:"token,omitempty"`
}

// DevGrant is a bare JSON number.
type DevGrant = float64
