package sse

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/realtime"
)

// Handler attaches server-sent-event streams to the hub. SSE is the
// read-only fallback for dashboards that cannot hold a WebSocket open:
// clients cannot subscribe after connecting, so extra topics beyond the
// role/identity defaults come from the channels query parameter.
type Handler struct {
	hub    *realtime.Hub
	logger logger.Logger
}

func NewHandler(hub *realtime.Hub, log logger.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: log.WithField("handler", "sse"),
	}
}

// Connect handles SSE connection requests.
func (h *Handler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "service temporarily unavailable",
		})
		return
	}

	userID := c.Query("userId")
	role := realtime.ParseRole(c.Query("isAdmin") == "true")

	conn, err := realtime.NewSSEConnection(
		c.Request.Context(),
		uuid.NewString(),
		userID,
		role,
		c.Writer,
		h.hub.PingInterval(),
		h.logger,
	)
	if err != nil {
		h.logger.Errorf("failed to create sse connection: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "streaming not supported",
		})
		return
	}

	if channels := c.QueryArray("channels"); len(channels) > 0 {
		conn.Subscribe(channels...)
	}

	if err := h.hub.Register(conn); err != nil {
		h.logger.Errorf("failed to register sse connection: %v", err)
		conn.Close()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to register connection",
		})
		return
	}

	h.logger.Infof("sse connection %s registered (role: %s)", conn.ID(), role)

	// Hold the handler open; gin ends the response when we return.
	<-conn.Context().Done()
	h.logger.Infof("sse connection %s disconnected", conn.ID())
}
