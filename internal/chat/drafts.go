package chat

// SetDraft stores in-progress, unsent input for a conversation. A draft has
// its own lifecycle: it may exist before its conversation does, survives
// selection changes, and is cleared only by a successful send. An empty text
// removes the draft.
func (m *Manager) SetDraft(conversationID, text string) {
	if conversationID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if text == "" {
		delete(m.drafts, conversationID)
		m.store.DeleteDraft(conversationID)
		return
	}
	m.drafts[conversationID] = text
	m.store.SaveDraft(conversationID, text)
}

// Draft returns the unsent input for a conversation, or "".
func (m *Manager) Draft(conversationID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.drafts[conversationID]
}
