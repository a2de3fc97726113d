package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(historyTokens int) *Service {
	return &Service{
		logger:        zap.NewNop(),
		historyTokens: historyTokens,
		history:       make(map[string][]exchange),
	}
}

func TestBoundedHistoryDropsOldestFirst(t *testing.T) {
	s := testService(20)
	s.history["t1"] = []exchange{
		{role: "user", content: strings.Repeat("old ", 40)},
		{role: "assistant", content: "short answer"},
		{role: "user", content: "recent question"},
	}

	bounded := s.boundedHistory("t1")

	require.NotEmpty(t, bounded)
	assert.Less(t, len(bounded), 3, "oversized oldest exchange is dropped")
	assert.Equal(t, "recent question", bounded[len(bounded)-1].content)
}

func TestBoundedHistoryKeepsSmallThreads(t *testing.T) {
	s := testService(1000)
	s.history["t1"] = []exchange{
		{role: "user", content: "hi"},
		{role: "assistant", content: "hello"},
	}

	assert.Len(t, s.boundedHistory("t1"), 2)
}

func TestBuildPromptShape(t *testing.T) {
	s := testService(1000)
	s.history["t1"] = []exchange{
		{role: "user", content: "earlier"},
		{role: "assistant", content: "reply"},
	}

	prompt := s.buildPrompt("t1", "now")

	assert.Contains(t, prompt, "user: earlier")
	assert.Contains(t, prompt, "assistant: reply")
	assert.Contains(t, prompt, "user: now")
	assert.True(t, strings.HasSuffix(prompt, "Response:"))
}

func TestTokenCountEstimateWithoutEncoder(t *testing.T) {
	s := testService(10)

	assert.Equal(t, 1, s.tokenCount(""))
	assert.Equal(t, 11, s.tokenCount(strings.Repeat("a", 40)))
}
