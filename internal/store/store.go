// Package store persists the conversation state into a kv.Store under fixed
// logical keys. Writes are best-effort: the in-memory registry stays
// authoritative and a failed write only produces a failure event, never an
// error for the caller.
package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chatx/chatx/internal/kv"
	"github.com/chatx/chatx/internal/models"
	"go.uber.org/zap"
)

const (
	keyConversations = "conversations"
	keyActive        = "active-conversation"
	keyPins          = "pinned-messages"
	keyReactions     = "message-reactions"
	draftPrefix      = "draft-"
)

// Snapshot is the full persisted state of a client session.
type Snapshot struct {
	Conversations []models.Conversation
	ActiveID      string
	Drafts        map[string]string
	Pins          map[string]bool
	Reactions     map[string]string
}

type Adapter struct {
	kv       kv.Store
	logger   *zap.Logger
	failures chan error
}

func New(store kv.Store, logger *zap.Logger) *Adapter {
	return &Adapter{
		kv:       store,
		logger:   logger,
		failures: make(chan error, 16),
	}
}

// Failures reports persistence failures that were degraded to notifications.
// The channel is never closed; events are dropped when nobody is draining it.
func (a *Adapter) Failures() <-chan error {
	return a.failures
}

func (a *Adapter) degrade(key string, err error) {
	a.logger.Warn("persistence write failed",
		zap.String("key", key),
		zap.Error(err))
	select {
	case a.failures <- fmt.Errorf("persist %s: %w", key, err):
	default:
	}
}

func (a *Adapter) put(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		a.degrade(key, err)
		return
	}
	if err := a.kv.Set(key, data); err != nil {
		a.degrade(key, err)
	}
}

func (a *Adapter) SaveConversations(convs []models.Conversation) {
	a.put(keyConversations, convs)
}

// SaveActive stores the active conversation record, or removes the key when
// nothing is selected. Only the id is honored at load time; the registry's
// copy of the conversation stays the single source of truth.
func (a *Adapter) SaveActive(conv *models.Conversation) {
	if conv == nil {
		if err := a.kv.Delete(keyActive); err != nil {
			a.degrade(keyActive, err)
		}
		return
	}
	a.put(keyActive, conv)
}

func (a *Adapter) SaveDraft(conversationID, text string) {
	a.put(draftPrefix+conversationID, text)
}

func (a *Adapter) DeleteDraft(conversationID string) {
	if err := a.kv.Delete(draftPrefix + conversationID); err != nil {
		a.degrade(draftPrefix+conversationID, err)
	}
}

func (a *Adapter) SavePins(pins map[string]bool) {
	a.put(keyPins, pins)
}

func (a *Adapter) SaveReactions(reactions map[string]string) {
	a.put(keyReactions, reactions)
}

// Load restores a snapshot from the medium. Timestamps come back as real
// time values through the JSON round trip; conversation records that do not
// match the schema are skipped with a warning instead of failing the load.
// Only read errors from the medium itself are returned.
func (a *Adapter) Load() (*Snapshot, error) {
	snap := &Snapshot{
		Drafts:    make(map[string]string),
		Pins:      make(map[string]bool),
		Reactions: make(map[string]string),
	}

	if err := a.loadConversations(snap); err != nil {
		return nil, err
	}
	if err := a.loadActive(snap); err != nil {
		return nil, err
	}
	if err := a.loadDrafts(snap); err != nil {
		return nil, err
	}
	a.loadAnnotations(snap)

	return snap, nil
}

func (a *Adapter) loadConversations(snap *Snapshot) error {
	data, ok, err := a.kv.Get(keyConversations)
	if err != nil {
		return fmt.Errorf("read %s: %w", keyConversations, err)
	}
	if !ok {
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		a.logger.Warn("stored conversation list is not an array, discarding",
			zap.Error(err))
		return nil
	}

	for _, record := range raw {
		var conv models.Conversation
		if err := json.Unmarshal(record, &conv); err != nil {
			a.logger.Warn("skipping malformed conversation record", zap.Error(err))
			continue
		}
		if conv.Messages == nil {
			conv.Messages = []models.Message{}
		}
		if err := conv.Validate(); err != nil {
			a.logger.Warn("skipping invalid conversation record",
				zap.String("id", conv.ID),
				zap.Error(err))
			continue
		}
		snap.Conversations = append(snap.Conversations, conv)
	}
	return nil
}

func (a *Adapter) loadActive(snap *Snapshot) error {
	data, ok, err := a.kv.Get(keyActive)
	if err != nil {
		return fmt.Errorf("read %s: %w", keyActive, err)
	}
	if !ok {
		return nil
	}

	var conv models.Conversation
	if err := json.Unmarshal(data, &conv); err != nil || conv.ID == "" {
		a.logger.Warn("discarding malformed active-conversation record")
		return nil
	}

	// The pointer must resolve into the registry or be null.
	for i := range snap.Conversations {
		if snap.Conversations[i].ID == conv.ID {
			snap.ActiveID = conv.ID
			return nil
		}
	}
	return nil
}

func (a *Adapter) loadDrafts(snap *Snapshot) error {
	keys, err := a.kv.Keys(draftPrefix)
	if err != nil {
		return fmt.Errorf("list drafts: %w", err)
	}
	for _, key := range keys {
		data, ok, err := a.kv.Get(key)
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			a.logger.Warn("skipping malformed draft", zap.String("key", key))
			continue
		}
		if text != "" {
			snap.Drafts[strings.TrimPrefix(key, draftPrefix)] = text
		}
	}
	return nil
}

func (a *Adapter) loadAnnotations(snap *Snapshot) {
	if data, ok, err := a.kv.Get(keyPins); err == nil && ok {
		var pins map[string]bool
		if err := json.Unmarshal(data, &pins); err == nil {
			snap.Pins = pins
		}
	}
	if data, ok, err := a.kv.Get(keyReactions); err == nil && ok {
		var reactions map[string]string
		if err := json.Unmarshal(data, &reactions); err == nil {
			snap.Reactions = reactions
		}
	}
	if snap.Pins == nil {
		snap.Pins = make(map[string]bool)
	}
	if snap.Reactions == nil {
		snap.Reactions = make(map[string]string)
	}
}
