// Package ws implements the WebSocket hub: graph change broadcasts and
// per-connection metadata selection sessions.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/metrics"
	"github.com/persistorai/papergraph/internal/models"
)

// Hub channel buffer sizes.
const (
	broadcastBuffer = 256
	registerBuffer  = 64
	maxClients      = 1000
)

// MetadataSource resolves the record shown for a selected node.
type MetadataSource interface {
	NodeMetadata(ctx context.Context, nodeID string) (*models.StoredMetadata, error)
}

// Hub manages active WebSocket clients and broadcasts messages.
// All client map mutations happen exclusively in the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	seq        atomic.Uint64
	log        *logrus.Logger
	buffer     *EventBuffer

	source     MetadataSource
	selections *metadata.Selections
}

// NewHub creates a new Hub. source answers select messages and may be nil,
// in which case selections are ignored.
func NewHub(source MetadataSource, log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan []byte, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		buffer:     NewEventBuffer(defaultBufferMaxLen, defaultBufferMaxAge),
		source:     source,
		selections: metadata.NewSelections(),
	}
}

// drainTimeout is how long the hub waits for clients to flush after shutdown.
const drainTimeout = 3 * time.Second

// Run starts the hub event loop. It exits when Shutdown is called or the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return

		case client := <-h.register:
			if len(h.clients) >= maxClients {
				h.log.Warn("connection limit reached, dropping client")
				client.closeSend()

				continue
			}

			h.clients[client] = true
			h.updateCount()
			h.log.WithFields(logrus.Fields{"session": client.Session, "total": len(h.clients)}).Debug("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}

			h.selections.End(client.Session)
			h.updateCount()

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !client.trySend(msg) {
					client.closeSend()
					delete(h.clients, client)
				}
			}

			h.updateCount()
		}
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// maxBroadcastPayload is the maximum allowed broadcast payload size.
const maxBroadcastPayload = 4096

// Broadcast queues msg for every client. Oversized payloads are dropped.
func (h *Hub) Broadcast(msg []byte) {
	if len(msg) > maxBroadcastPayload {
		h.log.WithField("payload_size", len(msg)).Warn("dropping oversized broadcast payload")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastEvent assigns a sequence ID, stores the event for replay, and
// broadcasts it.
func (h *Hub) BroadcastEvent(eventType string, data json.RawMessage) {
	evt := Event{
		Type: eventType,
		ID:   h.seq.Add(1),
		Data: data,
		Time: time.Now(),
	}

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	h.buffer.Append(&evt)
	h.Broadcast(msg)
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		h.selections.End(c.Session)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// PendingSelections returns the number of sessions with a resolution in flight.
func (h *Hub) PendingSelections() int {
	return h.selections.InFlight()
}

// Shutdown sends a shutdown frame to every client, waits for their write
// pumps to flush, then closes all connections.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

func (h *Hub) drainClients() {
	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","message":"server shutting down"}`)
	for client := range h.clients {
		client.trySend(shutdownMsg)
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

wait:
	for {
		drained := true

		for client := range h.clients {
			if len(client.send) > 0 {
				drained = false
				break
			}
		}

		if drained {
			break
		}

		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")
			break wait
		case <-ticker.C:
		}
	}

	for client := range h.clients {
		client.closeSend()
		h.selections.End(client.Session)
		delete(h.clients, client)
	}

	h.updateCount()
}

// ReplayEvents sends buffered events since lastEventID to the client.
// Returns false if the requested ID is no longer buffered.
func (h *Hub) ReplayEvents(client *Client, lastEventID uint64) bool {
	oldest := h.buffer.OldestID()
	if oldest > 0 && lastEventID > 0 && lastEventID < oldest {
		return false
	}

	for _, evt := range h.buffer.Since(lastEventID) {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		if !client.trySend(msg) {
			return true
		}
	}

	return true
}

// selectNode runs one selection for client. Only the latest selection of a
// session delivers a message; superseded ones are cancelled and discarded.
func (h *Hub) selectNode(ctx context.Context, client *Client, nodeID string) {
	if h.source == nil {
		return
	}

	selCtx, ticket := h.selections.Begin(ctx, client.Session)

	stored, err := h.source.NodeMetadata(selCtx, nodeID)

	if !h.selections.Finish(ticket) {
		h.log.WithFields(logrus.Fields{"session": client.Session, "node_id": nodeID}).Debug("discarding superseded selection")
		return
	}

	msg := MetadataMsg{Type: "metadata", NodeID: nodeID, Metadata: stored}
	if err != nil {
		msg.Metadata = nil
		msg.Error = err.Error()
	}

	b, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal metadata message")
		return
	}

	client.trySend(b)
}
