// Package messaging provides the live event feed pushed to connected
// back-office dashboards over websockets.
package messaging

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// LiveClient represents a single connected dashboard client.
type LiveClient struct {
	Conn *websocket.Conn
	Send chan []byte
}

// LiveEvent is one entry in the dashboard's real-time event feed. Session ids
// are masked before they reach the hub.
type LiveEvent struct {
	Type      string `json:"type"`
	EventName string `json:"eventName"`
	PagePath  string `json:"pagePath,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	SessionID string `json:"sessionId"`
	TS        int64  `json:"ts"`
}

// sessionTick is the periodic session count payload.
type sessionTick struct {
	Type          string `json:"type"`
	ActiveCount   int    `json:"activeCount"`
	TrackedEvents int    `json:"trackedEvents"`
	TS            int64  `json:"ts"`
}

// LiveBroadcaster manages all connected dashboard clients and fans out events.
type LiveBroadcaster struct {
	clients      map[*LiveClient]bool
	register     chan *LiveClient
	unregister   chan *LiveClient
	events       chan LiveEvent
	cacheManager *manager.Manager
	logger       *logging.ChanneledLogger
	mu           sync.RWMutex

	eventCount int
}

// NewLiveBroadcaster creates a new broadcaster instance.
func NewLiveBroadcaster(cm *manager.Manager, logger *logging.ChanneledLogger) *LiveBroadcaster {
	return &LiveBroadcaster{
		clients:      make(map[*LiveClient]bool),
		register:     make(chan *LiveClient),
		unregister:   make(chan *LiveClient),
		events:       make(chan LiveEvent, 64),
		cacheManager: cm,
		logger:       logger,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *LiveBroadcaster) Run() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Live().Info("Dashboard client registered", "clients", b.clientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Live().Info("Dashboard client unregistered", "clients", b.clientCount())

		case event := <-b.events:
			b.eventCount++
			b.fanOut(event)

		case <-ticker.C:
			b.broadcastTick()
		}
	}
}

// Register queues a client for registration.
func (b *LiveBroadcaster) Register(client *LiveClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *LiveBroadcaster) Unregister(client *LiveClient) {
	b.unregister <- client
}

// Publish pushes one event into the live feed. Non-blocking: when the hub is
// saturated the event is dropped, the dashboard is a best-effort mirror.
func (b *LiveBroadcaster) Publish(event LiveEvent) {
	event.Type = "event"
	select {
	case b.events <- event:
	default:
		b.logger.Live().Warn("Live event dropped, hub saturated", "eventName", event.EventName)
	}
}

func (b *LiveBroadcaster) fanOut(event LiveEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Live().Error("Failed to encode live event", "error", err.Error())
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- payload:
		default:
			// Slow client; skip rather than stall the hub.
		}
	}
}

func (b *LiveBroadcaster) broadcastTick() {
	b.mu.RLock()
	hasClients := len(b.clients) > 0
	b.mu.RUnlock()
	if !hasClients {
		return
	}

	tick := sessionTick{
		Type:          "sessions",
		ActiveCount:   b.cacheManager.SessionCount(),
		TrackedEvents: b.eventCount,
		TS:            time.Now().UnixMilli(),
	}
	payload, err := json.Marshal(tick)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (b *LiveBroadcaster) clientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// WritePump pumps messages from the hub to the websocket connection. Run as a
// goroutine per client.
func (c *LiveClient) WritePump() {
	ticker := time.NewTicker(45 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
