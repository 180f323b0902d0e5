package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTopics(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
		want  []string
	}{
		{
			name:  "chat status change targets the chat and admins",
			event: NewEvent(KindChatStatusChange, map[string]any{"chatId": "c1"}),
			want:  []string{"chat:c1", TopicAdminAll},
		},
		{
			name:  "invoice update targets the user and admins",
			event: NewEvent(KindInvoiceUpdate, map[string]any{"userId": "u1"}),
			want:  []string{"user:u1", TopicAdminAll},
		},
		{
			name:  "new chat targets the new_chat topic and admins",
			event: NewEvent(KindNewChat, map[string]any{"chatId": "c2"}),
			want:  []string{TopicNewChat, TopicAdminAll},
		},
		{
			name:  "workshop request targets both workshop topics",
			event: NewEvent(KindWorkshopRequestCreated, nil),
			want:  []string{TopicAdminWorkshopRequests, TopicWorkshopRequestsAll},
		},
		{
			name:  "about media targets the media topic",
			event: NewEvent(KindAboutMediaAdded, nil),
			want:  []string{TopicAboutMedia},
		},
		{
			name:  "payment settings target admins and user notifications",
			event: NewEvent(KindPaymentSettings, nil),
			want:  []string{TopicAdminAll, TopicUserNotifications},
		},
		{
			name:  "unrecognized kinds fall back to system:all",
			event: NewEvent(Kind("unheard_of"), nil),
			want:  []string{TopicSystemAll},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, eventTopics(tt.event))
		})
	}
}

func TestRecipients_ExplicitIdentityWinsOverRoles(t *testing.T) {
	hub := newTestHub(t, Config{})

	admin := registerMock(t, hub, newMockConnection("a1", "admin1", RoleAdmin))
	user := registerMock(t, hub, newMockConnection("u1", "u1", RoleUser))

	// Identities and roles both set: only the identity path applies.
	e := NewIdentityEvent(KindInvoiceUpdate, nil, "u1")
	e.Roles = []Role{RoleAdmin}

	recipients := hub.recipients(e)

	assert.Len(t, recipients, 1)
	assert.Equal(t, user.ID(), recipients[0].ID())
	assert.NotEqual(t, admin.ID(), recipients[0].ID())
}

func TestRecipients_RolePath(t *testing.T) {
	hub := newTestHub(t, Config{})

	admin := registerMock(t, hub, newMockConnection("a1", "admin1", RoleAdmin))
	registerMock(t, hub, newMockConnection("u1", "u1", RoleUser))

	recipients := hub.recipients(NewRoleEvent(KindInvoiceUpdate, nil, RoleAdmin))

	assert.Len(t, recipients, 1)
	assert.Equal(t, admin.ID(), recipients[0].ID())
}

func TestRecipients_TopicPathMatchesOnce(t *testing.T) {
	hub := newTestHub(t, Config{})

	// Admins hold both chat:c1 (via explicit subscribe) and admin:all, so a
	// chat status change matches two topics; the connection still resolves
	// exactly once.
	admin := registerMock(t, hub, newMockConnection("a1", "admin1", RoleAdmin))
	admin.Subscribe(TopicChat("c1"))

	e := NewEvent(KindChatStatusChange, map[string]any{"chatId": "c1"})
	recipients := hub.recipients(e)

	assert.Len(t, recipients, 1)
}

func TestRecipients_AnonymousNeverMatchesIdentityPath(t *testing.T) {
	hub := newTestHub(t, Config{})

	registerMock(t, hub, newMockConnection("anon", "", RoleUser))

	recipients := hub.recipients(NewIdentityEvent(KindNotification, nil, ""))

	assert.Empty(t, recipients)
}
