package ws

import (
	"encoding/json"
	"time"

	"github.com/persistorai/papergraph/internal/models"
)

// Event is a broadcast message sent to every connected client.
type Event struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// Inbound message types.
const (
	MsgSubscribe = "subscribe"
	MsgSelect    = "select"
)

// inbound is the union of messages a client may send.
type inbound struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id,omitempty"`
	NodeID      string `json:"node_id,omitempty"`
}

// ResetMsg tells the client to do a full refresh (requested events too old).
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// MetadataMsg answers the latest select for a session. Exactly one of
// Metadata and Error is set.
type MetadataMsg struct {
	Type     string                 `json:"type"`
	NodeID   string                 `json:"node_id"`
	Metadata *models.StoredMetadata `json:"metadata,omitempty"`
	Error    string                 `json:"error,omitempty"`
}
