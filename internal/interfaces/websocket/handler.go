package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/realtime"
)

// Handler upgrades HTTP requests to WebSocket connections and hands them to
// the hub. Authentication happens upstream; userId and isAdmin arrive as
// query parameters set by the auth layer.
type Handler struct {
	hub      *realtime.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *realtime.Hub, log logger.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking is done by the reverse proxy.
				return true
			},
		},
	}
}

// Connect handles WebSocket connection upgrade requests.
func (h *Handler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "service temporarily unavailable",
		})
		return
	}

	userID := c.Query("userId")
	role := realtime.ParseRole(c.Query("isAdmin") == "true")

	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	conn := realtime.NewWebSocketConnection(
		uuid.NewString(),
		userID,
		role,
		wsConn,
		h.hub.PingInterval(),
		h.logger,
	)

	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("failed to register websocket connection: %v", err)
		conn.Close()
		return
	}

	h.logger.Infof("websocket connection %s registered (role: %s)", conn.ID(), role)

	// Hold the handler until the client goes away.
	<-conn.Context().Done()
	h.logger.Infof("websocket connection %s disconnected", conn.ID())
}
