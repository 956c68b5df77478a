package notification

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"restaurant-kds/internal/config"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
)

const maxInboundMessage = 512

// WebSocketHandler upgrades kitchen displays onto the bus
type WebSocketHandler struct {
	bus          *Bus
	upgrader     websocket.Upgrader
	sendBuffer   int
	writeTimeout time.Duration
	pingInterval time.Duration
	logger       *logger.Logger
}

func NewWebSocketHandler(bus *Bus, cfg config.NotificationsConfig, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// displays are served from other origins on the restaurant LAN
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
		logger:       log,
	}
}

func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.ServeWS)
}

// ServeWS handles GET /ws. The display receives every event broadcast after
// its subscription and nothing from before.
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestID(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.Error("websocket_upgrade_failed", "Failed to upgrade display connection", requestID, err, nil)
		return
	}

	c := &client{
		conn:         conn,
		queue:        NewQueue(uuid.NewString(), h.sendBuffer),
		writeTimeout: h.writeTimeout,
		pingInterval: h.pingInterval,
		logger:       h.logger,
	}

	if err := h.bus.Subscribe(c); err != nil {
		h.logger.Error("websocket_subscribe_failed", "Failed to register display", requestID, err, nil)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.writeTimeout))
		conn.Close()
		return
	}

	h.logger.Info("display_connected", "Kitchen display connected", requestID, map[string]interface{}{
		"subscriber_id": c.ID(),
		"remote_addr":   r.RemoteAddr,
	})

	go c.writePump()
	go c.readPump(h.bus)
}

// client is one connected display. Its queue is the only path to the
// socket, so writes never happen concurrently.
type client struct {
	conn         *websocket.Conn
	queue        *Queue
	writeTimeout time.Duration
	pingInterval time.Duration
	logger       *logger.Logger
}

func (c *client) ID() string { return c.queue.ID() }

func (c *client) Send(event models.Event) error { return c.queue.Send(event) }

// Close ends the write pump, which closes the socket
func (c *client) Close() { c.queue.Close() }

func (c *client) pongWait() time.Duration {
	return 2 * c.pingInterval
}

// readPump discards inbound frames and watches for disconnects
func (c *client) readPump(bus *Bus) {
	defer func() {
		bus.Unsubscribe(c.ID())
		c.Close()
		c.logger.Info("display_disconnected", "Kitchen display disconnected", "", map[string]interface{}{
			"subscriber_id": c.ID(),
		})
	}()

	c.conn.SetReadLimit(maxInboundMessage)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait()))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("websocket_read_failed", "Display connection dropped", "", err, map[string]interface{}{
					"subscriber_id": c.ID(),
				})
			}
			return
		}
	}
}

// writePump sends queued events as JSON text frames and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.queue.Events():
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Error("websocket_write_failed", "Failed to push event to display", "", err, map[string]interface{}{
					"subscriber_id": c.ID(),
					"event":         event.Name,
				})
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
