package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"littlelemon/pkg/resp"
	"littlelemon/policy"
	"littlelemon/services"
	"littlelemon/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	sendBuffer  = 32
	eventBuffer = 256
)

// OrderHub fans order events out to websocket subscribers.
type OrderHub struct {
	clients    map[*client]bool
	broadcast  chan services.OrderEvent
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

type client struct {
	id        string
	conn      *websocket.Conn
	principal policy.Principal
	send      chan []byte
}

func NewOrderHub(log zerolog.Logger) *OrderHub {
	return &OrderHub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan services.OrderEvent, eventBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Publish queues an event without blocking the caller. Events are dropped when the queue is full.
func (h *OrderHub) Publish(e services.OrderEvent) {
	select {
	case h.broadcast <- e:
	default:
		h.log.Warn().Uint("order_id", e.OrderID).Str("type", e.Type).Msg("order event dropped")
	}
}

// Run serves register/unregister/broadcast until ctx is done.
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				h.drop(c)
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			msg, err := json.Marshal(e)
			if err != nil {
				h.log.Error().Err(err).Msg("encode order event")
				continue
			}
			h.mu.Lock()
			for c := range h.clients {
				if !CanSee(c.principal, e) {
					continue
				}
				select {
				case c.send <- msg:
				default:
					h.log.Warn().Str("client_id", c.id).Msg("slow websocket client dropped")
					h.drop(c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *OrderHub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
}

func (h *OrderHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CanSee applies the same visibility as order listing.
func CanSee(p policy.Principal, e services.OrderEvent) bool {
	switch p.Role() {
	case policy.RoleManager:
		return true
	case policy.RoleDeliveryCrew:
		return e.DeliveryCrewID != nil && *e.DeliveryCrewID == p.UserID
	case policy.RoleCustomer:
		return e.UserID == p.UserID
	}
	return false
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WS route: /ws/orders
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	p := utils.CurrentPrincipal(c)
	if p.Role() == policy.RoleNone {
		resp.Forbidden(c, "You are not allowed to follow orders")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	cl := &client{id: uuid.NewString(), conn: conn, principal: p, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- cl:
	case <-h.done:
		conn.Close()
		return
	}
	h.log.Info().Str("client_id", cl.id).Uint("user_id", p.UserID).Str("role", p.Role().String()).Msg("ws client connected")

	go h.writePump(cl)
	go h.readPump(cl)
}

// readPump only watches for close and pong frames; clients do not send data.
func (h *OrderHub) readPump(cl *client) {
	defer func() {
		select {
		case h.unregister <- cl:
		case <-h.done:
		}
		cl.conn.Close()
	}()
	cl.conn.SetReadLimit(512)
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *OrderHub) writePump(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
