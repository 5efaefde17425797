// internal/handler/event_bus.go
package handler

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"serial-plotter/internal/plot"
	"serial-plotter/internal/session"
)

// EventBus fans session notifications out to WebSocket clients. It
// implements session.Observer; publishing never blocks the session.
type EventBus struct {
	connections *ConnectionManager
	events      chan WebSocketMessage
	logger      *zap.Logger
	dropped     atomic.Uint64
}

// NewEventBus creates a new event bus
func NewEventBus(connections *ConnectionManager, logger *zap.Logger) *EventBus {
	return &EventBus{
		connections: connections,
		events:      make(chan WebSocketMessage, 1000),
		logger:      logger.With(zap.String("component", "event-bus")),
	}
}

// Run distributes published events until ctx is cancelled
func (eb *EventBus) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-eb.events:
			eb.distributeEvent(event)
		}
	}
}

// Publish queues an event, dropping it when the bus is full
func (eb *EventBus) Publish(event WebSocketMessage) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case eb.events <- event:
	default:
		eb.dropped.Add(1)
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", event.Type),
		)
	}
}

// Dropped returns how many events were discarded
func (eb *EventBus) Dropped() uint64 {
	return eb.dropped.Load()
}

// distributeEvent sends an event to every subscribed client
func (eb *EventBus) distributeEvent(event WebSocketMessage) {
	payload, err := json.Marshal(event)
	if err != nil {
		eb.logger.Error("Failed to marshal broadcast message", zap.Error(err))
		return
	}

	for _, client := range eb.connections.Clients() {
		if !client.Wants(event.Type) {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			// Slow clients miss frames rather than stall the stream
			eb.logger.Debug("Client send channel full during broadcast",
				zap.String("client_id", client.ID),
				zap.String("event_type", event.Type),
			)
		}
	}
}

// TextReceived publishes raw text for the console view
func (eb *EventBus) TextReceived(text string) {
	eb.Publish(WebSocketMessage{Type: MessageData, Data: gin.H{"text": text}})
}

// Rendered publishes a rate-limited plot update
func (eb *EventBus) Rendered(snap plot.Snapshot) {
	eb.Publish(WebSocketMessage{Type: MessagePlot, Data: snap, Timestamp: snap.RenderedAt})
}

// Disconnected tells clients the port was lost so they can reset their controls
func (eb *EventBus) Disconnected(err error) {
	data := gin.H{"reason": "port disconnected"}
	if err != nil {
		data["error"] = err.Error()
	}
	eb.Publish(WebSocketMessage{Type: MessageDisconnected, Data: data})
}

// StateChanged publishes the session status
func (eb *EventBus) StateChanged(status session.Status) {
	eb.Publish(WebSocketMessage{Type: MessageState, Data: status})
}

var _ session.Observer = (*EventBus)(nil)
