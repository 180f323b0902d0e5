package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientState_SeedsDefaultTopics(t *testing.T) {
	s := newClientState("c1", "u1", RoleUser)

	assert.True(t, s.Subscribed(TopicIdentity("u1")))
	assert.True(t, s.Subscribed(TopicUserNotifications))
	assert.False(t, s.Subscribed(TopicAdminAll))
}

func TestClientState_SubscribeUnsubscribe(t *testing.T) {
	s := newClientState("c1", "", RoleUser)

	s.Subscribe("chat:c1", "chat:c2")
	assert.True(t, s.Subscribed("chat:c1"))
	assert.True(t, s.Subscribed("chat:c2"))

	s.Unsubscribe("chat:c1")
	assert.False(t, s.Subscribed("chat:c1"))
	assert.True(t, s.Subscribed("chat:c2"))

	// Unsubscribing an unknown topic is a no-op.
	s.Unsubscribe("never:subscribed")
}

func TestClientState_TopicEqualityIsExactMatch(t *testing.T) {
	s := newClientState("c1", "", RoleUser)

	s.Subscribe("chat:c1")

	assert.False(t, s.Subscribed("chat:C1"))
	assert.False(t, s.Subscribed("chat:c1 "))
	assert.False(t, s.Subscribed("chat:c"))
}

func TestClientState_Touch(t *testing.T) {
	s := newClientState("c1", "", RoleUser)

	before := s.LastSeen()
	time.Sleep(5 * time.Millisecond)
	s.Touch()

	assert.True(t, s.LastSeen().After(before))
}

func TestEventFrame(t *testing.T) {
	e := NewEvent(KindChatMessage, map[string]any{"chatId": "c1"})

	frame := e.Frame()

	assert.Equal(t, "chat_message", frame.Type)
	assert.Equal(t, e.Payload, frame.Data)
	assert.Equal(t, e.CreatedAt.Format(time.RFC3339), frame.Timestamp)
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole(true))
	assert.Equal(t, RoleUser, ParseRole(false))
}
