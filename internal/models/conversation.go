package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Edited    bool      `json:"edited,omitempty"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	// Renamed is set when the user renames the conversation explicitly,
	// which stops title derivation from the first message.
	Renamed bool `json:"renamed,omitempty"`
}

var (
	ErrMissingID   = errors.New("record has no id")
	ErrEmptyTitle  = errors.New("conversation title is empty")
	ErrInvalidRole = errors.New("message role is invalid")
	ErrZeroTime    = errors.New("record has no timestamp")
)

func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Validate checks a restored conversation against the schema. Stored data is
// untrusted; a record that fails validation is skipped at load time rather
// than aborting the whole restore.
func (c *Conversation) Validate() error {
	if c.ID == "" {
		return ErrMissingID
	}
	if c.Title == "" {
		return ErrEmptyTitle
	}
	if c.CreatedAt.IsZero() {
		return ErrZeroTime
	}
	for i := range c.Messages {
		if err := c.Messages[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (m *Message) Validate() error {
	if m.ID == "" {
		return ErrMissingID
	}
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}
	return nil
}
