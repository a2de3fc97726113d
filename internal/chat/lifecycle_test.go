package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chatx/chatx/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWait = 2 * time.Second
	testTick = 5 * time.Millisecond
)

// fakeCompleter scripts the remote boundary for lifecycle tests.
type fakeCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	calls    []string
	block    chan struct{} // when set, Complete waits until it is closed
}

func (f *fakeCompleter) Complete(ctx context.Context, message, threadID string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, message)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return f.response, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestSendToEmptyRegistry(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})

	convID := m.Send(context.Background(), "hello")
	require.NotEmpty(t, convID)

	convs := m.Conversations()
	require.Len(t, convs, 1, "exactly one conversation is created")
	conv := convs[0]
	assert.Equal(t, "hello", conv.Title)

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, models.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "hello", conv.Messages[0].Content)
	assert.Equal(t, models.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "hi", conv.Messages[1].Content)

	assert.False(t, m.Typing(convID))
	assert.Empty(t, m.Banner())
}

func TestSendBlankIsNoop(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})

	assert.Empty(t, m.Send(context.Background(), "   \n"))
	assert.Empty(t, m.Conversations())
}

func TestSendTransportFailure(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{err: errors.New("connection refused")})

	convID := m.Send(context.Background(), "hello")

	convs := m.Conversations()
	require.Len(t, convs, 1)
	msgs := convs[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, FailureMessage, msgs[1].Content)

	assert.Equal(t, FailureMessage, m.Banner())
	assert.False(t, m.Typing(convID))

	m.ClearBanner()
	assert.Empty(t, m.Banner())
}

func TestSendEmptyResponseField(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: ""})

	m.Send(context.Background(), "hello")

	msgs := m.Conversations()[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, EmptyResponseMessage, msgs[1].Content)
	assert.Empty(t, m.Banner(), "a degraded success is not a failure")
}

func TestSendClearsDraft(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})
	conv := m.Create()
	m.SetDraft(conv.ID, "hello in progress")

	m.Send(context.Background(), "hello in progress")

	assert.Empty(t, m.Draft(conv.ID))
}

func TestSendDerivesTitleOnlyOnFirstMessage(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})

	m.Send(context.Background(), "first message decides the title")
	m.Send(context.Background(), "second message does not")

	assert.Equal(t, "first message decides the titl...", m.Conversations()[0].Title)
}

func TestSendTypingVisibleWhilePending(t *testing.T) {
	block := make(chan struct{})
	completer := &fakeCompleter{response: "hi", block: block}
	m := newTestManager(t, completer)
	conv := m.Create()

	done := make(chan struct{})
	go func() {
		m.Send(context.Background(), "hello")
		close(done)
	}()

	require.Eventually(t, func() bool { return m.Typing(conv.ID) }, testWait, testTick)
	close(block)
	<-done
	assert.False(t, m.Typing(conv.ID))
}

func TestOverlappingSendsAreSerialized(t *testing.T) {
	block := make(chan struct{})
	completer := &fakeCompleter{response: "hi", block: block}
	m := newTestManager(t, completer)
	conv := m.Create()

	done := make(chan struct{})
	go func() {
		m.Send(context.Background(), "first")
		close(done)
	}()
	require.Eventually(t, func() bool { return m.Typing(conv.ID) }, testWait, testTick)

	// Second submission against the pending conversation is dropped.
	assert.Empty(t, m.Send(context.Background(), "second"))

	close(block)
	<-done

	msgs := m.Conversations()[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, 1, completer.callCount())
}

func TestDeleteWhilePendingDiscardsResult(t *testing.T) {
	block := make(chan struct{})
	completer := &fakeCompleter{response: "hi", block: block}
	m := newTestManager(t, completer)
	conv := m.Create()

	done := make(chan struct{})
	go func() {
		m.Send(context.Background(), "hello")
		close(done)
	}()
	require.Eventually(t, func() bool { return m.Typing(conv.ID) }, testWait, testTick)

	m.Delete(conv.ID)
	close(block)
	<-done

	assert.Empty(t, m.Conversations())
}

func TestRegenerate(t *testing.T) {
	completer := &fakeCompleter{response: "first answer"}
	m := newTestManager(t, completer)

	convID := m.Send(context.Background(), "question")
	completer.response = "second answer"

	m.Regenerate(context.Background(), convID)

	msgs := m.Conversations()[0].Messages
	require.Len(t, msgs, 2, "regenerate does not append a new user message")
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, "second answer", msgs[1].Content)
	assert.Equal(t, []string{"question", "question"}, completer.calls)
}

func TestRegeneratePreconditionNoop(t *testing.T) {
	completer := &fakeCompleter{response: "hi"}
	m := newTestManager(t, completer)
	conv := m.Create()

	// Empty conversation.
	m.Regenerate(context.Background(), conv.ID)
	assert.Empty(t, m.Conversations()[0].Messages)

	// Single message only.
	m.mu.Lock()
	m.conversations[0].Messages = []models.Message{models.NewMessage(models.RoleUser, "alone")}
	m.mu.Unlock()
	m.Regenerate(context.Background(), conv.ID)
	assert.Len(t, m.Conversations()[0].Messages, 1, "message count unchanged")

	// Unknown conversation.
	m.Regenerate(context.Background(), "nope")
	assert.Zero(t, completer.callCount())
}

func TestEdit(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})
	m.Send(context.Background(), "tpyo")
	msgID := m.Conversations()[0].Messages[0].ID

	m.Edit(msgID, "typo")

	msg := m.Conversations()[0].Messages[0]
	assert.Equal(t, "typo", msg.Content)
	assert.True(t, msg.Edited)
	assert.Equal(t, 1, (m.completer.(*fakeCompleter)).callCount(), "edit never re-triggers the remote call")
}

func TestEditUnknownIsNoop(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})
	m.Send(context.Background(), "hello")

	m.Edit("nope", "changed")

	assert.Equal(t, "hello", m.Conversations()[0].Messages[0].Content)
}

func TestClearMessagesKeepsConversation(t *testing.T) {
	m := newTestManager(t, &fakeCompleter{response: "hi"})
	convID := m.Send(context.Background(), "hello")

	m.ClearMessages(convID)

	convs := m.Conversations()
	require.Len(t, convs, 1)
	assert.Empty(t, convs[0].Messages)
	assert.Equal(t, "hello", convs[0].Title)
}
