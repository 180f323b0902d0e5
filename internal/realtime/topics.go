package realtime

// Topics are plain strings compared by exact match. All topic names are built
// here so the rest of the codebase never concatenates topic strings by hand.
const (
	TopicAdminAll              = "admin:all"
	TopicSystemAll             = "system:all"
	TopicChatAll               = "chat:all"
	TopicNewChat               = "new_chat"
	TopicAdminWorkshopRequests = "admin:workshop_requests"
	TopicWorkshopRequestsAll   = "workshop_requests:all"
	TopicUserNotifications     = "user:notifications"
	TopicAboutContent          = "about:content"
	TopicAboutMedia            = "about:media"
)

// TopicChat addresses everyone following a single chat.
func TopicChat(chatID string) string {
	return "chat:" + chatID
}

// TopicIdentity is the personal topic seeded for every identified connection.
func TopicIdentity(identity string) string {
	return "identity:" + identity
}

// TopicUser addresses a user by id on the topic path. Kept distinct from
// TopicIdentity to preserve the wire-level namespace of the consuming clients.
func TopicUser(userID string) string {
	return "user:" + userID
}

// DefaultTopics computes the topics seeded at connect time from the
// connection's role and identity. Pure; safe to call from tests.
func DefaultTopics(role Role, identity string) []string {
	var topics []string

	if identity != "" {
		topics = append(topics, TopicIdentity(identity))
	}

	switch role {
	case RoleAdmin:
		topics = append(topics,
			TopicAdminAll,
			TopicSystemAll,
			TopicChatAll,
			TopicNewChat,
			TopicAdminWorkshopRequests,
			TopicWorkshopRequestsAll,
		)
	default:
		if identity != "" {
			topics = append(topics,
				TopicUserNotifications,
				TopicAboutContent,
				TopicAboutMedia,
			)
		}
	}

	return topics
}
