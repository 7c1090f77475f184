package wspubsub

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-otc/internal/core/domain"
	"github.com/tdex-network/tdex-otc/internal/core/ports"
)

const (
	// TopicQueryParam is the query param of the upgrade request used to
	// filter the streamed events by type.
	TopicQueryParam = "topic"

	clientBufferSize = 64
	writeTimeout     = 10 * time.Second
	pingInterval     = 30 * time.Second
	pongTimeout      = pingInterval + 10*time.Second
)

type client struct {
	id     string
	topic  string
	conn   *websocket.Conn
	sendCh chan []byte
}

// Hub is an EventPublisher that streams events to the websocket clients
// connected through its http handler. Slow clients whose buffer is full are
// disconnected.
type Hub struct {
	upgrader websocket.Upgrader

	lock    *sync.RWMutex
	clients map[string]*client
	closed  bool
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		lock:    &sync.RWMutex{},
		clients: make(map[string]*client),
	}
}

var _ ports.EventPublisher = (*Hub)(nil)

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get(TopicQueryParam)
	if topic != ports.UnspecifiedTopic && topic != ports.AnyTopic &&
		!domain.EventType(topic).IsValid() {
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("ws: failed to upgrade connection")
		return
	}

	c := &client{
		id:     uuid.New().String(),
		topic:  topic,
		conn:   conn,
		sendCh: make(chan []byte, clientBufferSize),
	}
	if !h.register(c) {
		//nolint
		conn.Close()
		return
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// NumClients returns the number of connected clients.
func (h *Hub) NumClients() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

func (h *Hub) PublishEvent(_ context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	for id, c := range h.clients {
		if !c.wants(event.Type) {
			continue
		}
		select {
		case c.sendCh <- payload:
		default:
			log.Debugf("ws: client %s is too slow, disconnecting", id)
			h.unregisterLocked(c)
		}
	}
	return nil
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.closed = true
	for _, c := range h.clients {
		h.unregisterLocked(c)
	}
}

func (h *Hub) register(c *client) bool {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return false
	}
	h.clients[c.id] = c
	return true
}

func (h *Hub) unregister(c *client) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.sendCh)
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		//nolint
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendCh:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				//nolint
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.unregister(c)
				return
			}
		case <-ticker.C:
			//nolint
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.unregister(c)
				return
			}
		}
	}
}

// readLoop only consumes control messages, clients are not expected to
// send anything.
func (h *Hub) readLoop(c *client) {
	defer h.unregister(c)

	//nolint
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(
				err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			) {
				log.WithError(err).Debugf("ws: client %s disconnected", c.id)
			}
			return
		}
	}
}

func (c *client) wants(eventType domain.EventType) bool {
	return c.topic == ports.UnspecifiedTopic || c.topic == ports.AnyTopic ||
		c.topic == eventType.String()
}
