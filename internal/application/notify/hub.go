// Package notify fans record changes out to live subscribers so clients can
// refresh without polling.
package notify

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrTooManyClients is returned when the hub is at capacity
	ErrTooManyClients = errors.New("too many stream clients")
	// ErrHubClosed is returned once the hub has been closed for shutdown
	ErrHubClosed = errors.New("stream hub closed")
)

// Change tells subscribers which record of which collection changed
type Change struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

// Client is one live subscriber
type Client struct {
	ch      chan Change
	dropped atomic.Int64
}

// Changes delivers changes until the client is unsubscribed
func (c *Client) Changes() <-chan Change {
	return c.ch
}

// Dropped counts changes skipped because the client fell behind
func (c *Client) Dropped() int64 {
	return c.dropped.Load()
}

// Hub keeps the set of live subscribers. A slow client loses changes
// rather than blocking the writer.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	buffer     int
	maxClients int
	closed     bool
	logger     *zap.Logger
}

// NewHub creates a hub. maxClients <= 0 means unlimited.
func NewHub(buffer, maxClients int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		buffer:     buffer,
		maxClients: maxClients,
		logger:     logger.Named("stream_hub"),
	}
}

// Subscribe registers a new client
func (h *Hub) Subscribe() (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return nil, ErrTooManyClients
	}
	c := &Client{ch: make(chan Change, h.buffer)}
	h.clients[c] = struct{}{}
	return c, nil
}

// Unsubscribe removes the client and closes its channel
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.ch)
	if n := c.Dropped(); n > 0 {
		h.logger.Debug("Stream client left with dropped changes", zap.Int64("dropped", n))
	}
}

// Broadcast offers change to every client without blocking
func (h *Hub) Broadcast(change Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.ch <- change:
		default:
			c.dropped.Add(1)
		}
	}
}

// ClientCount returns the number of live clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.ch)
	}
}
