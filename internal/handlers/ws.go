package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskaboard/realtime-api/internal/realtime"
)

type WSHandler struct {
	hub      *realtime.Hub
	engine   *realtime.Engine
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, engine *realtime.Engine, allowedOrigin string) *WSHandler {
	return &WSHandler{
		hub:    hub,
		engine: engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Serve upgrades the connection and runs the session until the client goes
// away. The session leaves its room on any disconnect, normal or not.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	session := realtime.NewSession(h.hub, h.engine, conn)
	session.Start()
}
