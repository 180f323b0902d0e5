package realtime

// eventTopics derives the topic set for an event that carries no explicit
// targeting. Kinds without a dedicated row broadcast on system:all so a new
// event type is visible to admins before it gets its own routing.
func eventTopics(e *Event) []string {
	switch e.Kind {
	case KindChatMessage:
		return []string{TopicChat(e.payloadString("chatId"))}
	case KindChatStatusChange:
		return []string{TopicChat(e.payloadString("chatId")), TopicAdminAll}
	case KindChatListUpdate:
		return []string{TopicChatAll}
	case KindNewChat:
		return []string{TopicNewChat, TopicAdminAll}
	case KindInvoiceUpdate:
		return []string{TopicUser(e.payloadString("userId")), TopicAdminAll}
	case KindMasterClassUpdate, KindServiceStyleUpdated, KindServiceOptionUpdated:
		return []string{TopicUserNotifications, TopicAdminAll}
	case KindUserRegistered:
		return []string{TopicAdminAll}
	case KindWorkshopRequestCreated, KindWorkshopRequestUpdated,
		KindWorkshopRequestDeleted, KindWorkshopRequestStatusChanged:
		return []string{TopicAdminWorkshopRequests, TopicWorkshopRequestsAll}
	case KindAboutContentUpdate:
		return []string{TopicAboutContent}
	case KindAboutMediaAdded, KindAboutMediaUpdated, KindAboutMediaDeleted:
		return []string{TopicAboutMedia}
	case KindPaymentSettings:
		return []string{TopicAdminAll, TopicUserNotifications}
	default:
		return []string{TopicSystemAll}
	}
}

// recipients resolves the concrete connection set for an event. The three
// addressing paths are mutually exclusive; within the chosen path each
// connection appears at most once.
func (h *Hub) recipients(e *Event) []Connection {
	var out []Connection

	switch {
	case len(e.Identities) > 0:
		wanted := make(map[string]struct{}, len(e.Identities))
		for _, id := range e.Identities {
			wanted[id] = struct{}{}
		}
		h.registry.ForEach(func(c Connection) {
			if c.Identity() == "" {
				return
			}
			if _, ok := wanted[c.Identity()]; ok {
				out = append(out, c)
			}
		})

	case len(e.Roles) > 0:
		wanted := make(map[Role]struct{}, len(e.Roles))
		for _, r := range e.Roles {
			wanted[r] = struct{}{}
		}
		h.registry.ForEach(func(c Connection) {
			if _, ok := wanted[c.Role()]; ok {
				out = append(out, c)
			}
		})

	default:
		topics := eventTopics(e)
		h.registry.ForEach(func(c Connection) {
			for _, t := range topics {
				if c.Subscribed(t) {
					out = append(out, c)
					return
				}
			}
		})
	}

	return out
}
