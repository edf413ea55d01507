// Package stream pushes freshly priced odds to websocket subscribers. Clients
// subscribe per prize and receive the full record set for that market on
// every repricing run.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/hackbook/internal/metrics"
	"github.com/yourusername/hackbook/internal/models"
)

const writeTimeout = 5 * time.Second

// ClientMsg is a message received from a websocket client
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	PrizeID string `json:"prizeId"` // required for subscribe/unsubscribe
}

// OddsUpdate is pushed to subscribers of a prize's market
type OddsUpdate struct {
	PrizeID string               `json:"prizeId"`
	Odds    []*models.OddsRecord `json:"odds"`
}

// client wraps one websocket connection. gorilla/websocket permits at most
// one concurrent writer per connection, so the read loop's pongs and the
// broadcast path both write through the client's mutex.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) sendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Hub manages websocket connections and per-prize subscriptions. It
// implements the pricing engine's Publisher interface.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Logger
	mu       sync.RWMutex
	// prizeID -> set of clients
	subs map[string]map[*client]struct{}
}

// NewHub creates a hub with the given origin policy
func NewHub(allowOrigin func(r *http.Request) bool, logger *logrus.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		logger:   logger,
		subs:     make(map[string]map[*client]struct{}),
	}
}

// HandleWS runs the lifecycle of one websocket connection. A client may
// subscribe to any number of prizes; all its subscriptions are dropped on
// disconnect.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			if msg.PrizeID == "" {
				continue
			}
			h.mu.Lock()
			if _, ok := h.subs[msg.PrizeID]; !ok {
				h.subs[msg.PrizeID] = make(map[*client]struct{})
			}
			h.subs[msg.PrizeID][cl] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.PrizeID]; ok {
				delete(m, cl)
				if len(m) == 0 {
					delete(h.subs, msg.PrizeID)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = cl.sendJSON(map[string]string{"type": "pong"})
		}
	}

	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, cl)
	}
	h.mu.Unlock()
}

// PublishOdds broadcasts the latest records to every subscriber of the prize.
// A write failure drops only that connection's message; the read loop will
// clean the connection up.
func (h *Hub) PublishOdds(prizeID uuid.UUID, records []*models.OddsRecord) {
	key := prizeID.String()

	h.mu.RLock()
	clients := make([]*client, 0, len(h.subs[key]))
	for c := range h.subs[key] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	b, err := json.Marshal(OddsUpdate{PrizeID: key, Odds: records})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal odds update")
		return
	}

	for _, c := range clients {
		_ = c.send(b)
	}
}
