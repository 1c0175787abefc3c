package server

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/san-kum/heatsim/internal/sim"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 16
	broadcastQueue = 64
)

// Hub maintains the set of active clients and broadcasts frames to them.
// It is a sim.Observer; OnTick never blocks the simulation.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	replies    chan reply
	control    func(Msg) Msg
	done       chan struct{}
	log        log.FieldLogger

	connected atomic.Int64
	sent      atomic.Int64
	dropped   atomic.Int64
}

func NewHub(l log.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastQueue),
		replies:    make(chan reply),
		done:       make(chan struct{}),
		log:        l,
	}
}

// reply is a control answer addressed to one client.
type reply struct {
	c   *client
	msg []byte
}

// Run serves registrations, broadcasts and control replies until ctx is
// done, then closes every client. Only Run sends on or closes a client's
// send channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return
		case c := <-h.register:
			h.clients[c] = true
			h.connected.Store(int64(len(h.clients)))
			h.log.WithField("clients", len(h.clients)).Info("client connected")
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.WithField("clients", len(h.clients)).Info("client disconnected")
			}
		case r := <-h.replies:
			if _, ok := h.clients[r.c]; !ok {
				continue
			}
			select {
			case r.c.send <- r.msg:
			default:
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.log.Warn("client too slow, disconnecting")
					h.drop(c)
				}
			}
		}
	}
}

// join registers c unless the hub has stopped.
func (h *Hub) join(c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// respond hands a control reply to Run. Replies to clients that were
// already dropped are discarded there.
func (h *Hub) respond(c *client, msg []byte) {
	select {
	case h.replies <- reply{c: c, msg: msg}:
	case <-h.done:
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Store(int64(len(h.clients)))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int { return int(h.connected.Load()) }

// Sent returns how many frames were queued for broadcast.
func (h *Hub) Sent() int { return int(h.sent.Load()) }

// Broadcast queues data for every client, dropping it if the queue is full.
func (h *Hub) Broadcast(data []byte) {
	select {
	case h.broadcast <- data:
		h.sent.Add(1)
	default:
		h.dropped.Add(1)
		h.log.WithField("dropped", h.dropped.Load()).Debug("broadcast queue full")
	}
}

func (h *Hub) OnTick(f sim.Frame) {
	if h.Clients() == 0 {
		return
	}
	data, err := encodeFrame(f)
	if err != nil {
		h.log.WithError(err).Error("encode frame")
		return
	}
	h.Broadcast(data)
}

func (h *Hub) handle(m Msg) Msg {
	if h.control == nil {
		return Msg{Type: MsgError, Content: "control not supported"}
	}
	return h.control(m)
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump reads control messages and answers each one through the hub.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Msg
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.WithError(err).Warn("read")
			}
			return
		}
		data, err := encodeMsg(c.hub.handle(msg))
		if err != nil {
			continue
		}
		c.hub.respond(c, data)
	}
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
