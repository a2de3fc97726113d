package chat

// Annotations are keyed by message id and live independently of the message
// itself: entries for deleted or cleared messages dangle harmlessly and are
// never compacted.

func (m *Manager) TogglePin(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pins[messageID] {
		delete(m.pins, messageID)
	} else {
		m.pins[messageID] = true
	}
	m.store.SavePins(m.pins)
}

func (m *Manager) Pinned(messageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pins[messageID]
}

func (m *Manager) SetReaction(messageID, emoji string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if emoji == "" {
		delete(m.reactions, messageID)
	} else {
		m.reactions[messageID] = emoji
	}
	m.store.SaveReactions(m.reactions)
}

func (m *Manager) Reaction(messageID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.reactions[messageID]
}

func (m *Manager) ClearReaction(messageID string) {
	m.SetReaction(messageID, "")
}
