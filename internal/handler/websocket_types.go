// internal/handler/websocket_types.go
package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	ClientMessagesPerSecond = 20 // Inbound message limit per stream client
	ClientMessageBurst      = 40
)

// Stream message types
const (
	MessageData         = "data"
	MessagePlot         = "plot"
	MessageDisconnected = "disconnected"
	MessageState        = "state"
	MessageError        = "error"
	MessagePong         = "pong"
)

// StreamTopics lists the message types a client can subscribe to
var StreamTopics = []string{MessageData, MessagePlot, MessageDisconnected, MessageState}

// Client represents a WebSocket client
type Client struct {
	ID          string          `json:"id"`
	Connection  *websocket.Conn `json:"-"`
	Send        chan []byte     `json:"-"`
	UserAgent   string          `json:"user_agent"`
	RemoteAddr  string          `json:"remote_addr"`
	ConnectedAt time.Time       `json:"connected_at"`

	mu            sync.RWMutex
	subscriptions map[string]bool
	limiter       *rate.Limiter
	done          chan struct{}
	closeOnce     sync.Once
}

// NewClient creates a client with a buffered send queue
func NewClient(id string, conn *websocket.Conn, userAgent, remoteAddr string) *Client {
	return &Client{
		ID:          id,
		Connection:  conn,
		Send:        make(chan []byte, 256),
		UserAgent:   userAgent,
		RemoteAddr:  remoteAddr,
		ConnectedAt: time.Now(),
		limiter:     rate.NewLimiter(rate.Limit(ClientMessagesPerSecond), ClientMessageBurst),
		done:        make(chan struct{}),
	}
}

// Allow reports whether the client may send another message now
func (c *Client) Allow() bool {
	return c.limiter.Allow()
}

// Done is closed once the client has been unregistered
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Subscribe adds topics. A client with no subscriptions receives everything.
func (c *Client) Subscribe(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscriptions == nil {
		c.subscriptions = make(map[string]bool)
	}
	for _, t := range topics {
		c.subscriptions[t] = true
	}
}

// Unsubscribe removes topics
func (c *Client) Unsubscribe(topics ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.subscriptions, t)
	}
}

// Wants reports whether the client receives messages of type topic
func (c *Client) Wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscriptions) == 0 || c.subscriptions[topic]
}

// Subscriptions returns the subscribed topics
func (c *Client) Subscriptions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.subscriptions))
	for t := range c.subscriptions {
		out = append(out, t)
	}
	return out
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// ConnectionManager manages WebSocket connections. Registration goes
// through Run; once Run returns every client is closed.
type ConnectionManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	running    chan struct{}
	mutex      sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		running:    make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled
func (cm *ConnectionManager) Run(ctx context.Context) error {
	close(cm.running)
	defer func() {
		cm.mutex.Lock()
		for id, client := range cm.clients {
			delete(cm.clients, id)
			client.close()
		}
		cm.mutex.Unlock()
		close(cm.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-cm.register:
			cm.mutex.Lock()
			cm.clients[client.ID] = client
			cm.mutex.Unlock()

		case client := <-cm.unregister:
			cm.mutex.Lock()
			if _, ok := cm.clients[client.ID]; ok {
				delete(cm.clients, client.ID)
				client.close()
			}
			cm.mutex.Unlock()
		}
	}
}

// Running reports whether Run is accepting clients
func (cm *ConnectionManager) Running() bool {
	select {
	case <-cm.done:
		return false
	case <-cm.running:
		return true
	default:
		return false
	}
}

// Register registers a new client. It reports false when the manager has stopped.
func (cm *ConnectionManager) Register(client *Client) bool {
	select {
	case cm.register <- client:
		return true
	case <-cm.done:
		client.close()
		return false
	}
}

// Unregister unregisters a client
func (cm *ConnectionManager) Unregister(client *Client) {
	select {
	case cm.unregister <- client:
	case <-cm.done:
		client.close()
	}
}

// Clients returns the connected clients
func (cm *ConnectionManager) Clients() []*Client {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

// GetStats returns connection statistics
func (cm *ConnectionManager) GetStats() *ConnectionStats {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	stats := &ConnectionStats{
		TotalConnections: len(cm.clients),
		ByTopic:          make(map[string]int),
		Clients:          make([]*Client, 0, len(cm.clients)),
	}

	for _, client := range cm.clients {
		for _, topic := range StreamTopics {
			if client.Wants(topic) {
				stats.ByTopic[topic]++
			}
		}
		stats.Clients = append(stats.Clients, client)
	}

	return stats
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ByTopic          map[string]int `json:"by_topic"`
	Clients          []*Client      `json:"clients"`
}
