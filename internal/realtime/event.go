package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Role of a connected client. Unknown roles fall back to RoleUser.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Kind enumerates the business occurrences the hub fans out.
type Kind string

const (
	KindChatMessage      Kind = "chat_message"
	KindChatStatusChange Kind = "chat_status_change"
	KindChatListUpdate   Kind = "chat_list_update"
	KindNewChat          Kind = "new_chat"
	KindUnreadCount      Kind = "unread_count_update"

	KindInvoiceUpdate     Kind = "invoice_update"
	KindMasterClassUpdate Kind = "master_class_update"
	KindUserRegistered    Kind = "user_registered"

	KindSystemNotification Kind = "system_notification"
	KindNotification       Kind = "notification"

	KindWorkshopRequestCreated       Kind = "workshop_request_created"
	KindWorkshopRequestUpdated       Kind = "workshop_request_updated"
	KindWorkshopRequestDeleted       Kind = "workshop_request_deleted"
	KindWorkshopRequestStatusChanged Kind = "workshop_request_status_changed"

	KindAboutContentUpdate Kind = "about_content_update"
	KindAboutMediaAdded    Kind = "about_media_added"
	KindAboutMediaUpdated  Kind = "about_media_updated"
	KindAboutMediaDeleted  Kind = "about_media_deleted"

	KindServiceStyleUpdated  Kind = "service_style_updated"
	KindServiceOptionUpdated Kind = "service_option_updated"
	KindPaymentSettings      Kind = "payment_settings_changed"
)

// Event is an immutable record of a business occurrence. Exactly one
// addressing path applies, evaluated in priority order: explicit identities,
// then explicit roles, then topics derived from the kind.
type Event struct {
	ID        string
	Kind      Kind
	Payload   map[string]any
	CreatedAt time.Time

	// Identities lists identity values that must receive the event
	// regardless of topic subscriptions.
	Identities []string
	// Roles lists roles that must receive the event regardless of topic
	// subscriptions. Ignored when Identities is non-empty.
	Roles []Role
}

func NewEvent(kind Kind, payload map[string]any) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

func NewIdentityEvent(kind Kind, payload map[string]any, identities ...string) *Event {
	e := NewEvent(kind, payload)
	e.Identities = identities
	return e
}

func NewRoleEvent(kind Kind, payload map[string]any, roles ...Role) *Event {
	e := NewEvent(kind, payload)
	e.Roles = roles
	return e
}

// Frame serializes the event into the outbound wire envelope.
func (e *Event) Frame() *Frame {
	return &Frame{
		Type:      string(e.Kind),
		Data:      e.Payload,
		Timestamp: e.CreatedAt.Format(time.RFC3339),
	}
}

func (e *Event) payloadString(key string) string {
	if e.Payload == nil {
		return ""
	}
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}
