package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradegate/internal/admission"
)

const (
	streamWriteWait  = 5 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
	clientSendBuffer = 16
	hubBroadcastSize = 64
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

// DecisionHub broadcasts every admission decision to connected websocket
// clients. Clients that cannot keep up are disconnected rather than allowed
// to block the pipeline. Implements admission.DecisionObserver.
type DecisionHub struct {
	clients    map[*streamClient]struct{}
	register   chan *streamClient
	unregister chan *streamClient
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

type streamClient struct {
	hub  *DecisionHub
	conn *websocket.Conn
	send chan []byte
}

// NewDecisionHub creates the hub and starts its dispatch loop.
func NewDecisionHub() *DecisionHub {
	hub := &DecisionHub{
		clients:    make(map[*streamClient]struct{}),
		register:   make(chan *streamClient),
		unregister: make(chan *streamClient),
		broadcast:  make(chan []byte, hubBroadcastSize),
		done:       make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *DecisionHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			log.Debug().Int("clients", len(h.clients)).Msg("Decision stream client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the connection, not the pipeline.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.done:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// ObserveDecision publishes the decision record to all connected clients.
func (h *DecisionHub) ObserveDecision(record *admission.DecisionRecord) {
	payload, err := json.Marshal(record)
	if err != nil {
		log.Warn().Err(err).Msg("Decision record marshal failed")
		return
	}
	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		log.Warn().Msg("Decision stream backlog full, dropping record")
	}
}

// ServeWS upgrades an HTTP request to a websocket subscription.
func (h *DecisionHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := &streamClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Close shuts down the hub and disconnects all clients.
func (h *DecisionHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// readPump discards inbound frames and keeps the pong deadline fresh.
func (c *streamClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("Decision stream client read error")
			}
			return
		}
	}
}

// writePump flushes queued records and pings on an interval.
func (c *streamClient) writePump() {
	ticker := time.NewTicker(streamPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
