package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTogglePin(t *testing.T) {
	m := newTestManager(t, nil)

	m.TogglePin("m1")
	assert.True(t, m.Pinned("m1"))

	m.TogglePin("m1")
	assert.False(t, m.Pinned("m1"))
}

func TestReactions(t *testing.T) {
	m := newTestManager(t, nil)

	m.SetReaction("m1", "👍")
	assert.Equal(t, "👍", m.Reaction("m1"))

	m.SetReaction("m1", "🎉")
	m.ClearReaction("m1")
	assert.Empty(t, m.Reaction("m1"))
}

func TestAnnotationsOutliveMessages(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})
	convID := m.Send(context.Background(), "hello")
	msgID := m.Conversations()[0].Messages[0].ID

	m.TogglePin(msgID)
	m.SetReaction(msgID, "🔥")
	m.Delete(convID)

	// Dangling entries are tolerated, not compacted.
	assert.True(t, m.Pinned(msgID))
	assert.Equal(t, "🔥", m.Reaction(msgID))
}

func TestDraftIndependentOfConversation(t *testing.T) {
	m := newTestManager(t, nil)

	// A draft may exist before its conversation does.
	m.SetDraft("future-conv", "not yet sent")
	assert.Equal(t, "not yet sent", m.Draft("future-conv"))

	// It survives selection changes.
	other := m.Create()
	m.SetActive(other.ID)
	assert.Equal(t, "not yet sent", m.Draft("future-conv"))

	m.SetDraft("future-conv", "")
	assert.Empty(t, m.Draft("future-conv"))
}
