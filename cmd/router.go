package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/interfaces/rest/v1/handler"
	"go-booking-realtime/internal/interfaces/sse"
	"go-booking-realtime/internal/interfaces/websocket"
	"go-booking-realtime/internal/realtime"
)

func InitRouter(hub *realtime.Hub, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hub.IsRunning(),
			"stats":       hub.Stats(),
		})
	})

	notifyHandler := handler.NewNotifyHandler(hub, log)
	apiGroup := rootGroup.Group("/api")
	{
		apiGroup.POST("/chats/:chatId/messages", notifyHandler.SendChatMessage)
		apiGroup.POST("/chats/:chatId/unread", notifyHandler.SendUnreadCount)
		apiGroup.POST("/invoices/:invoiceId/status", notifyHandler.SendInvoiceUpdate)
		apiGroup.POST("/notifications", notifyHandler.SendNotification)
		apiGroup.GET("/stats", notifyHandler.Stats)
	}

	sse.InitRouter(log, hub, rootGroup)
	websocket.InitRouter(log, hub, rootGroup)

	return router
}
