package notifier

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// frame is the wire envelope for every pushed event.
type frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans events out to all connected dashboard clients. A single goroutine
// owns the client set, so register, unregister and broadcast never race.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	clients    map[*Client]struct{}
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan []byte, 256),
		clients:    make(map[*Client]struct{}),
		logger:     logger,
	}
}

// Run processes hub events until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.close()
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.logger.Info("dashboard client connected", zap.Int("clients", len(h.clients)))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
				h.logger.Info("dashboard client disconnected", zap.Int("clients", len(h.clients)))
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it rather than block the hub.
					// The dashboard re-fetches full state on reconnect.
					delete(h.clients, c)
					c.close()
					h.logger.Warn("dropping slow dashboard client")
				}
			}
		}
	}
}

// Publish marshals the payload and queues it for broadcast. Events are
// queued in call order, so observers see transitions in the order the
// coordinator applied them.
func (h *Hub) Publish(topic string, payload interface{}) {
	msg, err := json.Marshal(frame{Event: topic, Data: payload})
	if err != nil {
		h.logger.Error("failed to marshal push event", zap.String("topic", topic), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("push channel full, dropping event", zap.String("topic", topic))
	}
}

// Register queues a client for registration.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister queues a client for removal.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}
