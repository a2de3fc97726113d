// Package chat owns the client-side conversation state: the registry of
// conversations, the active selection, per-conversation drafts, message
// annotations, and the optimistic send/receive lifecycle against the remote
// completion service. All state lives in one explicit Manager; there are no
// package-level singletons.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/chatx/chatx/internal/client"
	"github.com/chatx/chatx/internal/models"
	"github.com/chatx/chatx/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTitle is given to conversations created before any message.
	DefaultTitle = "New Chat"

	titleLimit = 30
)

type Manager struct {
	mu sync.Mutex

	conversations []models.Conversation // front of the slice is newest
	activeID      string
	drafts        map[string]string
	pins          map[string]bool
	reactions     map[string]string
	inflight      map[string]bool
	banner        string

	completer client.Completer
	store     *store.Adapter
	logger    *zap.Logger
}

// NewManager restores persisted state from the adapter and returns a ready
// manager. Only a read failure of the medium itself is an error; malformed
// records were already skipped by the adapter.
func NewManager(adapter *store.Adapter, completer client.Completer, logger *zap.Logger) (*Manager, error) {
	snap, err := adapter.Load()
	if err != nil {
		return nil, err
	}

	return &Manager{
		conversations: snap.Conversations,
		activeID:      snap.ActiveID,
		drafts:        snap.Drafts,
		pins:          snap.Pins,
		reactions:     snap.Reactions,
		inflight:      make(map[string]bool),
		completer:     completer,
		store:         adapter,
		logger:        logger,
	}, nil
}

// Create allocates an empty conversation, inserts it at the front of the
// registry and makes it active.
func (m *Manager) Create() models.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv := m.createLocked()
	m.persistLocked()
	return conv
}

func (m *Manager) createLocked() models.Conversation {
	conv := models.Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []models.Message{},
		CreatedAt: time.Now(),
	}
	m.conversations = append([]models.Conversation{conv}, m.conversations...)
	m.activeID = conv.ID

	m.logger.Info("conversation created", zap.String("id", conv.ID))
	return conv
}

// Delete removes a conversation from the registry. Deleting the active
// conversation clears the selection; no other conversation is auto-selected.
// Unknown ids are a no-op.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return
	}
	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)
	if m.activeID == id {
		m.activeID = ""
	}

	m.logger.Info("conversation deleted", zap.String("id", id))
	m.persistLocked()
}

// Rename sets an explicit title and pins it against further derivation.
// Empty titles are rejected silently; a conversation title is never empty.
func (m *Manager) Rename(id, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(id)
	if idx < 0 {
		return
	}
	m.conversations[idx].Title = title
	m.conversations[idx].Renamed = true
	m.persistLocked()
}

// SetActive selects a conversation for display. Ids not present in the
// registry are ignored so the pointer always resolves.
func (m *Manager) SetActive(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(id) < 0 {
		return
	}
	m.activeID = id
	m.persistLocked()
}

// Active returns a copy of the selected conversation, if any.
func (m *Manager) Active() (models.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexLocked(m.activeID)
	if idx < 0 {
		return models.Conversation{}, false
	}
	return cloneConversation(m.conversations[idx]), true
}

// Conversations returns a copy of the registry, most recently created first.
func (m *Manager) Conversations() []models.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cloneLocked()
}

// Typing reports whether a send is pending against the conversation.
func (m *Manager) Typing(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.inflight[id]
}

// Banner returns the transient error banner, if set.
func (m *Manager) Banner() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.banner
}

func (m *Manager) ClearBanner() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.banner = ""
}

// DeriveTitle truncates the first message to the conversation title: at most
// 30 characters, with an ellipsis when the message was longer.
func DeriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return message
}

func (m *Manager) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range m.conversations {
		if m.conversations[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) cloneLocked() []models.Conversation {
	out := make([]models.Conversation, len(m.conversations))
	for i := range m.conversations {
		out[i] = cloneConversation(m.conversations[i])
	}
	return out
}

func cloneConversation(conv models.Conversation) models.Conversation {
	msgs := make([]models.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	conv.Messages = msgs
	return conv
}

// persistLocked serializes the registry and active pointer after every
// mutation. Failures are degraded inside the adapter and never reach here.
func (m *Manager) persistLocked() {
	m.store.SaveConversations(m.cloneLocked())

	if idx := m.indexLocked(m.activeID); idx >= 0 {
		active := cloneConversation(m.conversations[idx])
		m.store.SaveActive(&active)
	} else {
		m.store.SaveActive(nil)
	}
}
