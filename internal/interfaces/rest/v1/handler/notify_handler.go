package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-booking-realtime/internal/infrastructure/logger"
	"go-booking-realtime/internal/realtime"
)

// NotifyHandler is the REST glue the booking backend calls to originate
// events. It owns no delivery logic; everything goes through the hub's
// notification API, which never fails from the caller's point of view.
type NotifyHandler struct {
	hub    *realtime.Hub
	logger logger.Logger
}

func NewNotifyHandler(hub *realtime.Hub, log logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		hub:    hub,
		logger: log.WithField("handler", "notify"),
	}
}

type chatMessageRequest struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text" binding:"required"`
}

// SendChatMessage fans out a chat message to admins, chat subscribers, and
// the chat owner.
func (h *NotifyHandler) SendChatMessage(c *gin.Context) {
	chatID := c.Param("chatId")

	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message format"})
		return
	}

	h.hub.NotifyChatMessage(c.Request.Context(), chatID, req.SenderID, req.Text)

	c.JSON(http.StatusAccepted, gin.H{"status": "dispatched", "chatId": chatID})
}

type unreadCountRequest struct {
	Count int `json:"count"`
}

func (h *NotifyHandler) SendUnreadCount(c *gin.Context) {
	chatID := c.Param("chatId")

	var req unreadCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.hub.NotifyUnreadCount(c.Request.Context(), chatID, req.Count)

	c.JSON(http.StatusAccepted, gin.H{"status": "dispatched", "chatId": chatID})
}

type invoiceUpdateRequest struct {
	UserID string `json:"userId"`
	Status string `json:"status" binding:"required"`
}

func (h *NotifyHandler) SendInvoiceUpdate(c *gin.Context) {
	invoiceID := c.Param("invoiceId")

	var req invoiceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.hub.NotifyInvoiceUpdate(invoiceID, req.UserID, req.Status)

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "invoiceId": invoiceID})
}

type notificationRequest struct {
	Kind    string         `json:"kind" binding:"required"`
	Payload map[string]any `json:"payload"`
}

// SendNotification originates a generic event; unrecognized kinds broadcast
// on system:all.
func (h *NotifyHandler) SendNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.hub.Notify(realtime.Kind(req.Kind), req.Payload)

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "kind": req.Kind})
}

// Stats reports connection and queue counts for operational visibility.
func (h *NotifyHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}
