// Package llm generates chat completions for chatxd. Conversation history is
// kept per thread and bounded by a token budget before each generation.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

const systemPrompt = `You are ChatX, a helpful AI assistant. Answer the user's
messages directly and concisely. When you have generated an image for the
user, reference it inline as [IMAGE_GENERATED:<filename>].`

type exchange struct {
	role    string
	content string
}

type Service struct {
	llm           llms.LLM
	enc           *tiktoken.Tiktoken
	logger        *zap.Logger
	historyTokens int

	mu      sync.Mutex
	history map[string][]exchange
}

func New(baseURL, token, model string, historyTokens int, logger *zap.Logger) (*Service, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		// The encoder only serves history budgeting; a rough estimate
		// keeps the service usable without it.
		logger.Warn("tiktoken encoding unavailable, falling back to estimate", zap.Error(err))
		enc = nil
	}

	return &Service{
		llm:           llm,
		enc:           enc,
		logger:        logger,
		historyTokens: historyTokens,
		history:       make(map[string][]exchange),
	}, nil
}

// Respond generates the assistant reply for a thread and records both sides
// of the exchange in the thread history.
func (s *Service) Respond(ctx context.Context, threadID, message string) (string, error) {
	prompt := s.buildPrompt(threadID, message)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	completion = strings.TrimSpace(completion)

	s.mu.Lock()
	s.history[threadID] = append(s.history[threadID],
		exchange{role: "user", content: message},
		exchange{role: "assistant", content: completion},
	)
	s.mu.Unlock()

	return completion, nil
}

func (s *Service) buildPrompt(threadID, message string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nConversation history:\n")
	for _, ex := range s.boundedHistory(threadID) {
		fmt.Fprintf(&b, "%s: %s\n", ex.role, ex.content)
	}
	fmt.Fprintf(&b, "\nCurrent message:\nuser: %s\n\nResponse:", message)
	return b.String()
}

// boundedHistory returns the most recent exchanges of a thread that fit the
// token budget, oldest dropped first.
func (s *Service) boundedHistory(threadID string) []exchange {
	s.mu.Lock()
	history := s.history[threadID]
	s.mu.Unlock()

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += s.tokenCount(history[i].content)
		if total > s.historyTokens {
			break
		}
		start = i
	}
	return history[start:]
}

func (s *Service) tokenCount(text string) int {
	if s.enc != nil {
		return len(s.enc.Encode(text, nil, nil))
	}
	// Rough average of four characters per token.
	return len(text)/4 + 1
}
