// Package hub fans new arrival reports out to websocket clients.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"sync"

	"etaboard/internal/domain"
	"etaboard/internal/eta"
)

// Renderer re-derives the report of a key for one set of display options.
type Renderer interface {
	Render(key string, opts domain.DisplayOptions) *eta.TimeReport
}

type Client struct {
	ID   string
	Send chan []byte

	mu   sync.RWMutex
	keys map[string]struct{}
	opts domain.DisplayOptions
}

func NewClient(id string, bufferSize int, opts domain.DisplayOptions) *Client {
	return &Client{
		ID:   id,
		Send: make(chan []byte, bufferSize),
		keys: make(map[string]struct{}),
		opts: opts,
	}
}

func (c *Client) Options() domain.DisplayOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

func (c *Client) SetOptions(opts domain.DisplayOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
}

func (c *Client) HasKey(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.keys[key]
	return ok
}

func (c *Client) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	return keys
}

func (c *Client) addKeys(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.keys[k] = struct{}{}
	}
}

func (c *Client) removeKeys(keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.keys, k)
	}
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	keyClients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan []string

	renderer Renderer
	logger   *slog.Logger
}

func NewHub(renderer Renderer, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		keyClients: make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []string, 256),
		renderer:   renderer,
		logger:     logger.With("component", "hub"),
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.ID, "total", total)

		case client := <-h.unregister:
			h.removeClient(client)

		case keys := <-h.broadcast:
			h.fanout(keys)
		}
	}
}

func (h *Hub) Subscribe(client *Client, keys []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.addKeys(keys)
	for _, key := range keys {
		if h.keyClients[key] == nil {
			h.keyClients[key] = make(map[*Client]struct{})
		}
		h.keyClients[key][client] = struct{}{}
	}
}

func (h *Hub) Unsubscribe(client *Client, keys []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.removeKeys(keys)
	h.detach(client, keys)
}

func (h *Hub) detach(client *Client, keys []string) {
	for _, key := range keys {
		if h.keyClients[key] != nil {
			delete(h.keyClients[key], client)
			if len(h.keyClients[key]) == 0 {
				delete(h.keyClients, key)
			}
		}
	}
}

// Broadcast queues keys whose batches changed. It never blocks.
func (h *Hub) Broadcast(keys []string) {
	if len(keys) == 0 {
		return
	}
	select {
	case h.broadcast <- keys:
	default:
		h.logger.Warn("broadcast channel full, dropping update", "keys", len(keys))
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) SubscribedKeyCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.keyClients)
}

// SubscribedKeys lists every key at least one client is subscribed to.
func (h *Hub) SubscribedKeys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.keyClients))
	for key := range h.keyClients {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// fanout renders each key once per distinct set of display options among its
// subscribers.
func (h *Hub) fanout(keys []string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, key := range keys {
		clients, ok := h.keyClients[key]
		if !ok {
			continue
		}

		rendered := make(map[domain.DisplayOptions][]byte)
		for client := range clients {
			opts := client.Options()
			data, ok := rendered[opts]
			if !ok {
				data = h.encode(key, opts)
				rendered[opts] = data
			}
			if data == nil {
				continue
			}
			select {
			case client.Send <- data:
			default:
				h.logger.Debug("client send buffer full", "client_id", client.ID)
			}
		}
	}
}

func (h *Hub) encode(key string, opts domain.DisplayOptions) []byte {
	report := h.renderer.Render(key, opts)
	if report == nil {
		return nil
	}
	data, err := json.Marshal(Message{Type: "report", Payload: report})
	if err != nil {
		h.logger.Error("failed to encode report", "key", key, "error", err)
		return nil
	}
	return data
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}

	h.detach(client, client.Keys())
	delete(h.clients, client)
	close(client.Send)
	h.logger.Debug("client unregistered", "client_id", client.ID, "total", len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.Send)
	}
	h.clients = make(map[*Client]struct{})
	h.keyClients = make(map[string]map[*Client]struct{})
}
