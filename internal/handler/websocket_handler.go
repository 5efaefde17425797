// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"serial-plotter/internal/serialport"
	"serial-plotter/internal/utils"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// WebSocketHandler serves the live data stream
type WebSocketHandler struct {
	upgrader      websocket.Upgrader
	connections   *ConnectionManager
	session       SerialSession
	defaultEnding serialport.LineEnding
	logger        *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler. Browser origins are
// checked against allowedOrigins; an empty list allows any origin.
func NewWebSocketHandler(
	connections *ConnectionManager,
	session SerialSession,
	allowedOrigins []string,
	defaultEnding serialport.LineEnding,
	logger *zap.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		connections:   connections,
		session:       session,
		defaultEnding: defaultEnding,
		logger:        utils.NewServiceLogger(logger, "websocket-handler"),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

// HandleStream upgrades the request and streams session events
// @Summary Live data stream
// @Description WebSocket stream of data, plot, disconnected and state messages. Optional topic query parameters limit the message types.
// @Tags Stream
// @Param topic query []string false "Message types to receive" collectionFormat(multi)
// @Success 101 {string} string "Switching Protocols"
// @Router /ws/stream [get]
func (h *WebSocketHandler) HandleStream(c *gin.Context) {
	topics := c.QueryArray("topic")
	for _, t := range topics {
		if !slices.Contains(StreamTopics, t) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Unknown stream topic", fmt.Errorf("topic %q", t))
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := NewClient(uuid.NewString(), conn, c.Request.UserAgent(), c.Request.RemoteAddr)
	client.Subscribe(topics...)

	if !h.connections.Register(client) {
		conn.Close()
		return
	}

	h.logger.Info("Stream client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
		zap.Strings("topics", topics),
	)

	// Initial state so the client can set up its controls
	if client.Wants(MessageState) {
		h.sendMessage(client, &WebSocketMessage{
			Type:      MessageState,
			Data:      h.session.Status(),
			Timestamp: time.Now(),
		})
	}

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// handleClientRead handles reading messages from WebSocket client
func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
		h.logger.Info("Stream client disconnected", zap.String("client_id", client.ID))
	}()

	client.Connection.SetReadLimit(64 * 1024)
	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		return client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := client.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
			}
			return
		}

		if !client.Allow() {
			h.sendError(client, "rate limit exceeded")
			continue
		}

		var message WebSocketMessage
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			h.sendError(client, "invalid message: "+err.Error())
			continue
		}

		h.handleClientMessage(client, &message)
	}
}

// handleClientWrite handles writing messages to WebSocket client
func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Debug("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.ID),
				)
				return
			}

		case <-client.Done():
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			client.Connection.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleClientMessage handles incoming client messages
func (h *WebSocketHandler) handleClientMessage(client *Client, message *WebSocketMessage) {
	switch message.Type {
	case "subscribe":
		topics := messageTopics(message)
		client.Subscribe(topics...)
		h.sendMessage(client, &WebSocketMessage{
			Type:      "subscription_confirmed",
			Data:      gin.H{"topics": client.Subscriptions()},
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	case "unsubscribe":
		client.Unsubscribe(messageTopics(message)...)
	case "send":
		h.handleSend(client, message)
	case "ping":
		h.sendMessage(client, &WebSocketMessage{
			Type:      MessagePong,
			Timestamp: time.Now(),
			RequestID: message.RequestID,
		})
	default:
		h.sendError(client, fmt.Sprintf("unknown message type: %s", message.Type))
	}
}

func messageTopics(message *WebSocketMessage) []string {
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		return nil
	}

	var topics []string
	if topic, ok := data["topic"].(string); ok {
		topics = append(topics, topic)
	}
	if list, ok := data["topics"].([]interface{}); ok {
		for _, t := range list {
			if s, ok := t.(string); ok {
				topics = append(topics, s)
			}
		}
	}
	return slices.DeleteFunc(topics, func(t string) bool {
		return !slices.Contains(StreamTopics, t)
	})
}

// handleSend transmits user input from the stream connection
func (h *WebSocketHandler) handleSend(client *Client, message *WebSocketMessage) {
	data, ok := message.Data.(map[string]interface{})
	if !ok {
		h.sendError(client, "invalid send data")
		return
	}

	text, ok := data["text"].(string)
	if !ok {
		h.sendError(client, "text is required")
		return
	}

	ending := h.defaultEnding
	if raw, ok := data["line_ending"].(string); ok {
		parsed, err := serialport.ParseLineEnding(raw)
		if err != nil {
			h.sendError(client, err.Error())
			return
		}
		ending = parsed
	}

	err := h.session.Send(text, ending)
	response := gin.H{"success": err == nil}
	if err != nil {
		response["error"] = err.Error()
	}

	h.sendMessage(client, &WebSocketMessage{
		Type:      "send_result",
		Data:      response,
		Timestamp: time.Now(),
		RequestID: message.RequestID,
	})
}

// sendMessage queues a message for one client
func (h *WebSocketHandler) sendMessage(client *Client, message *WebSocketMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal WebSocket message", zap.Error(err))
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		h.logger.Warn("Client send channel full, dropping message",
			zap.String("client_id", client.ID),
		)
	}
}

// sendError sends an error message to a client
func (h *WebSocketHandler) sendError(client *Client, errorMsg string) {
	h.sendMessage(client, &WebSocketMessage{
		Type:      MessageError,
		Data:      gin.H{"error": errorMsg},
		Timestamp: time.Now(),
	})
}

// GetConnectionStats returns connection statistics
func (h *WebSocketHandler) GetConnectionStats() *ConnectionStats {
	return h.connections.GetStats()
}
