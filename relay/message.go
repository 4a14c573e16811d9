// Package relay propagates world-scope settings between the clients at a
// table. It is a dumb broadcast: the hub fans key updates out to everyone
// else in the room and replays the latest value per key to late joiners.
// No ordering is guaranteed across writers; every consumer treats updates
// as last-write-wins and applies them idempotently.
package relay

import "encoding/json"

// Message is the wire envelope for one shared-key update.
type Message struct {
	Type     string          `json:"type"`
	TableID  string          `json:"tableId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	Key      string          `json:"key,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

const (
	// TypeJoin announces a client entering a table room.
	TypeJoin = "join"
	// TypeSet carries one shared-key update.
	TypeSet = "set"
)
