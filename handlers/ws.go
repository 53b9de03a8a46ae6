package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pharmalink/services/notifier"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin than the API.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades dashboard connections onto the push hub.
type WSHandler struct {
	Hub    *notifier.Hub
	Logger *zap.Logger
}

func NewWSHandler(hub *notifier.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{Hub: hub, Logger: logger}
}

// Serve handles GET /ws.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := notifier.NewClient(h.Hub, conn, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
