package realtime

import "context"

// Notification API: one method per business occurrence. These are the only
// entry points collaborators use to originate events. Every method is
// fire-and-forget: it never returns an error and never blocks on transport
// I/O; failures surface in logs and as evicted connections.

func (h *Hub) NotifyChatStatusChange(chatID, status string) {
	h.enqueue(NewEvent(KindChatStatusChange, map[string]any{
		"chatId": chatID,
		"status": status,
	}))
}

func (h *Hub) NotifyChatListUpdate() {
	h.enqueue(NewEvent(KindChatListUpdate, map[string]any{}))
}

func (h *Hub) NotifyNewChat(chatID, userID string) {
	h.enqueue(NewEvent(KindNewChat, map[string]any{
		"chatId": chatID,
		"userId": userID,
	}))
}

// NotifyInvoiceUpdate dispatches twice: once to every admin by role, once to
// the owning user by identity. An admin who is also the owning user may
// receive both, which is acceptable for this kind.
func (h *Hub) NotifyInvoiceUpdate(invoiceID, userID, status string) {
	payload := map[string]any{
		"invoiceId": invoiceID,
		"userId":    userID,
		"status":    status,
	}

	h.enqueue(NewRoleEvent(KindInvoiceUpdate, payload, RoleAdmin))
	if userID != "" {
		h.enqueue(NewIdentityEvent(KindInvoiceUpdate, payload, userID))
	}
}

func (h *Hub) NotifyMasterClassUpdate(masterClassID, action string) {
	h.enqueue(NewEvent(KindMasterClassUpdate, map[string]any{
		"masterClassId": masterClassID,
		"action":        action,
	}))
}

func (h *Hub) NotifyUserRegistered(userID, name string) {
	h.enqueue(NewEvent(KindUserRegistered, map[string]any{
		"userId": userID,
		"name":   name,
	}))
}

func (h *Hub) NotifySystemNotification(title, message string) {
	h.enqueue(NewEvent(KindSystemNotification, map[string]any{
		"title":   title,
		"message": message,
	}))
}

// Notify originates a generic notification with an arbitrary payload.
func (h *Hub) Notify(kind Kind, payload map[string]any) {
	h.enqueue(NewEvent(kind, payload))
}

func (h *Hub) NotifyWorkshopRequestCreated(requestID, userID string) {
	h.enqueue(NewEvent(KindWorkshopRequestCreated, map[string]any{
		"requestId": requestID,
		"userId":    userID,
	}))
}

func (h *Hub) NotifyWorkshopRequestUpdated(requestID string) {
	h.enqueue(NewEvent(KindWorkshopRequestUpdated, map[string]any{
		"requestId": requestID,
	}))
}

func (h *Hub) NotifyWorkshopRequestDeleted(requestID string) {
	h.enqueue(NewEvent(KindWorkshopRequestDeleted, map[string]any{
		"requestId": requestID,
	}))
}

func (h *Hub) NotifyWorkshopRequestStatusChanged(requestID, status string) {
	h.enqueue(NewEvent(KindWorkshopRequestStatusChanged, map[string]any{
		"requestId": requestID,
		"status":    status,
	}))
}

func (h *Hub) NotifyAboutContentUpdate(section string) {
	h.enqueue(NewEvent(KindAboutContentUpdate, map[string]any{
		"section": section,
	}))
}

func (h *Hub) NotifyAboutMediaAdded(mediaID string) {
	h.enqueue(NewEvent(KindAboutMediaAdded, map[string]any{
		"mediaId": mediaID,
	}))
}

func (h *Hub) NotifyAboutMediaUpdated(mediaID string) {
	h.enqueue(NewEvent(KindAboutMediaUpdated, map[string]any{
		"mediaId": mediaID,
	}))
}

func (h *Hub) NotifyAboutMediaDeleted(mediaID string) {
	h.enqueue(NewEvent(KindAboutMediaDeleted, map[string]any{
		"mediaId": mediaID,
	}))
}

func (h *Hub) NotifyServiceStyleUpdated(styleID string) {
	h.enqueue(NewEvent(KindServiceStyleUpdated, map[string]any{
		"styleId": styleID,
	}))
}

func (h *Hub) NotifyServiceOptionUpdated(optionID string) {
	h.enqueue(NewEvent(KindServiceOptionUpdated, map[string]any{
		"optionId": optionID,
	}))
}

func (h *Hub) NotifyPaymentSettingsChanged() {
	h.enqueue(NewEvent(KindPaymentSettings, map[string]any{}))
}

// NotifyChatMessage delivers a chat message synchronously, bypassing the
// queue: message latency matters more than ordering against queued events.
// Recipient selection needs the identity owning the chat, which only the
// store knows.
func (h *Hub) NotifyChatMessage(ctx context.Context, chatID, senderID, text string) {
	event := NewEvent(KindChatMessage, map[string]any{
		"chatId":   chatID,
		"senderId": senderID,
		"text":     text,
	})

	h.fanOutChat(ctx, event, chatID)
}

// NotifyUnreadCount pushes an unread-counter update for a chat. Synchronous
// for the same reason as NotifyChatMessage.
func (h *Hub) NotifyUnreadCount(ctx context.Context, chatID string, count int) {
	event := NewEvent(KindUnreadCount, map[string]any{
		"chatId": chatID,
		"count":  count,
	})

	h.fanOutChat(ctx, event, chatID)
}

// fanOutChat iterates the registry directly under three predicates: admins
// always receive chat traffic, subscribers of the chat topic receive it, and
// so does the identity owning the chat. The recipient set is resolved once
// across all predicates so a connection matching several still receives the
// event exactly once. A failed owner lookup is logged and identity targeting
// is simply omitted.
func (h *Hub) fanOutChat(ctx context.Context, e *Event, chatID string) {
	if !h.IsRunning() {
		h.logger.Warnf("dropping %s event: hub is not running", e.Kind)
		return
	}

	owner := ""
	if h.owners != nil {
		var err error
		owner, err = h.owners.OwnerIdentity(ctx, chatID)
		if err != nil {
			h.logger.Errorf("failed to resolve owner of chat %s: %v", chatID, err)
			owner = ""
		}
	}

	topic := TopicChat(chatID)
	frame := e.Frame()
	delivered := 0

	h.registry.ForEach(func(c Connection) {
		match := c.Role() == RoleAdmin ||
			c.Subscribed(topic) ||
			(owner != "" && c.Identity() == owner)
		if !match {
			return
		}

		if h.deliver(c, frame) {
			delivered++
		}
	})

	h.logger.Debugf("fanned out %s event %s for chat %s to %d connections",
		e.Kind, e.ID, chatID, delivered)
}
