package websocket

import (
	"github.com/gin-gonic/gin"

	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/realtime"
)

// InitRouter mounts the WebSocket endpoint.
func InitRouter(log logger.Logger, hub *realtime.Hub, rg *gin.RouterGroup) {
	handler := NewHandler(hub, log)

	rg.GET("/ws", handler.Connect)
}
