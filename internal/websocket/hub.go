package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/match-insights/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are restricted by the CORS layer in front
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one dashboard connection following an agent session.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	Hub       *AgentHub
	LastSeen  time.Time
}

// AgentHub maintains active WebSocket connections and fans agent progress
// updates out to the clients following each session.
type AgentHub struct {
	clients        map[*Client]bool
	sessionClients map[string][]*Client
	broadcast      chan *models.AgentUpdate
	register       chan *Client
	unregister     chan *Client
	logger         *logrus.Logger
	mutex          sync.RWMutex
}

// NewAgentHub creates a new agent progress hub.
func NewAgentHub(logger *logrus.Logger) *AgentHub {
	return &AgentHub{
		clients:        make(map[*Client]bool),
		sessionClients: make(map[string][]*Client),
		broadcast:      make(chan *models.AgentUpdate, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		logger:         logger,
	}
}

// Run starts the hub loop handling registration and broadcast.
func (h *AgentHub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case update := <-h.broadcast:
			h.broadcastUpdate(update)

		case <-ticker.C:
			h.dropStaleClients()
		}
	}
}

// PublishAgentUpdate queues an update for every client following its
// session. Non-blocking: updates are dropped when the hub is saturated.
func (h *AgentHub) PublishAgentUpdate(update *models.AgentUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.logger.WithField("session_id", update.SessionID).Warn("Agent update dropped, hub saturated")
	}
}

// HandleWebSocket upgrades a dashboard connection following one session.
func (h *AgentHub) HandleWebSocket(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Error("Failed to upgrade agent WebSocket connection")
		return
	}

	client := &Client{
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Hub:       h,
		LastSeen:  time.Now(),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

// ConnectionCount returns the number of active connections.
func (h *AgentHub) ConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *AgentHub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.sessionClients[client.SessionID] = append(h.sessionClients[client.SessionID], client)

	h.logger.WithFields(logrus.Fields{
		"session_id":    client.SessionID,
		"total_clients": len(h.clients),
	}).Info("Agent WebSocket client connected")
}

func (h *AgentHub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)

	sessionClients := h.sessionClients[client.SessionID]
	for i, c := range sessionClients {
		if c == client {
			h.sessionClients[client.SessionID] = append(sessionClients[:i], sessionClients[i+1:]...)
			break
		}
	}
	if len(h.sessionClients[client.SessionID]) == 0 {
		delete(h.sessionClients, client.SessionID)
	}

	h.logger.WithFields(logrus.Fields{
		"session_id":    client.SessionID,
		"total_clients": len(h.clients),
	}).Info("Agent WebSocket client disconnected")
}

func (h *AgentHub) broadcastUpdate(update *models.AgentUpdate) {
	h.mutex.RLock()
	clients := h.sessionClients[update.SessionID]
	h.mutex.RUnlock()

	if len(clients) == 0 {
		return
	}

	data, err := json.Marshal(update)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal agent update")
		return
	}

	for _, client := range clients {
		select {
		case client.Send <- data:
			client.LastSeen = time.Now()
		default:
			// Send buffer full; drop the connection.
			h.unregister <- client
		}
	}
}

func (h *AgentHub) dropStaleClients() {
	h.mutex.RLock()
	now := time.Now()
	var stale []*Client
	for client := range h.clients {
		if now.Sub(client.LastSeen) > 2*time.Minute {
			stale = append(stale, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range stale {
		h.unregister <- client
	}
	if len(stale) > 0 {
		h.logger.WithField("stale_clients", len(stale)).Debug("Removed stale WebSocket clients")
	}
}

// readPump pumps control messages from the connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		c.LastSeen = time.Now()
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.WithError(err).Error("Agent WebSocket error")
			}
			break
		}
		c.LastSeen = time.Now()
	}
}

// writePump pumps hub messages to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
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
				c.Hub.logger.WithError(err).Error("Failed to write agent WebSocket message")
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
