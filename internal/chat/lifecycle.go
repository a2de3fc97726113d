package chat

import (
	"context"
	"strings"

	"github.com/chatx/chatx/internal/models"
	"go.uber.org/zap"
)

const (
	// FailureMessage is appended as the assistant reply when the remote call
	// fails in transport, times out, or returns a non-success status.
	FailureMessage = "Error: Could not connect to server."

	// EmptyResponseMessage stands in for a success payload whose response
	// field is missing or empty.
	EmptyResponseMessage = "Sorry, I could not process your request."
)

// Send runs one optimistic send cycle: the user message is appended
// synchronously, then the remote completion is awaited and its outcome is
// appended as the assistant reply. A failure is recovered locally into a
// fixed assistant message plus the banner; Send always reaches a terminal
// state. It returns the id of the conversation involved, or "" when the
// submission was a no-op (blank input, or a send already pending against the
// conversation).
func (m *Manager) Send(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	m.mu.Lock()
	idx := m.indexLocked(m.activeID)
	if idx < 0 {
		m.createLocked()
		idx = 0
	}
	conv := &m.conversations[idx]

	// Sends are serialized per conversation: a second submission while one
	// is pending is dropped rather than racing on the trailing message.
	if m.inflight[conv.ID] {
		m.mu.Unlock()
		m.logger.Debug("send dropped, completion already pending",
			zap.String("conversation", conv.ID))
		return ""
	}

	userMsg := models.NewMessage(models.RoleUser, text)
	conv.Messages = append(conv.Messages, userMsg)
	if len(conv.Messages) == 1 && !conv.Renamed {
		conv.Title = DeriveTitle(text)
	}

	delete(m.drafts, conv.ID)
	m.store.DeleteDraft(conv.ID)

	m.inflight[conv.ID] = true
	convID := conv.ID
	m.persistLocked()
	m.mu.Unlock()

	m.complete(ctx, convID, text)
	return convID
}

// Regenerate discards the trailing assistant message of the conversation and
// re-runs the completion with the preserved user message. It requires at
// least two messages with a user message second to last and an assistant
// message last; otherwise it is a silent no-op.
func (m *Manager) Regenerate(ctx context.Context, convID string) {
	m.mu.Lock()
	idx := m.indexLocked(convID)
	if idx < 0 {
		m.mu.Unlock()
		return
	}
	conv := &m.conversations[idx]

	n := len(conv.Messages)
	if n < 2 ||
		conv.Messages[n-2].Role != models.RoleUser ||
		conv.Messages[n-1].Role != models.RoleAssistant {
		m.mu.Unlock()
		return
	}
	if m.inflight[conv.ID] {
		m.mu.Unlock()
		return
	}

	text := conv.Messages[n-2].Content
	conv.Messages = conv.Messages[:n-1]
	m.inflight[conv.ID] = true
	m.persistLocked()
	m.mu.Unlock()

	m.complete(ctx, convID, text)
}

// complete awaits the remote outcome and appends the assistant reply. The
// conversation may have been deleted while the call was pending; the result
// is then discarded.
func (m *Manager) complete(ctx context.Context, convID, text string) {
	response, err := m.completer.Complete(ctx, text, convID)

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.inflight, convID)

	idx := m.indexLocked(convID)
	if idx < 0 {
		m.logger.Debug("conversation gone before completion settled",
			zap.String("conversation", convID))
		return
	}

	content := response
	switch {
	case err != nil:
		m.logger.Warn("completion failed", zap.String("conversation", convID), zap.Error(err))
		content = FailureMessage
		m.banner = FailureMessage
	case content == "":
		content = EmptyResponseMessage
	}

	conv := &m.conversations[idx]
	conv.Messages = append(conv.Messages, models.NewMessage(models.RoleAssistant, content))
	m.persistLocked()
}

// Edit replaces a message's content in place and marks it edited. It never
// re-triggers the remote call. Unknown message ids are a no-op.
func (m *Manager) Edit(messageID, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.conversations {
		msgs := m.conversations[i].Messages
		for j := range msgs {
			if msgs[j].ID == messageID {
				msgs[j].Content = content
				msgs[j].Edited = true
				m.persistLocked()
				return
			}
		}
	}
}

// ClearMessages empties a conversation without deleting it. Confirmation is
// the caller's concern.
func (m *Manager) ClearMessages(convID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(convID)
	if idx < 0 {
		return
	}
	m.conversations[idx].Messages = []models.Message{}
	m.persistLocked()
}
