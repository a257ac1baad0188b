// Package chat wraps the model client with per-conversation bookkeeping.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/genai"
)

// maxHistoryTurns caps the per-conversation history. Older turns are
// dropped so long-lived conversations cannot grow without bound.
const maxHistoryTurns = 50

// Turn is one completed user/assistant exchange. Never mutated after creation.
type Turn struct {
	User      string    `json:"user"`
	Assistant string    `json:"assistant"`
	Timestamp time.Time `json:"timestamp"`
}

// Session owns the local history of one conversation and, lazily, one
// multi-turn model session.
type Session struct {
	mu      sync.Mutex
	client  *genai.Client
	logger  logger.Logger
	history []Turn
	remote  *genai.Session
}

func NewSession(client *genai.Client, log logger.Logger) *Session {
	return &Session{
		client: client,
		logger: log,
	}
}

// Send runs a single-shot completion. Prior turns are not carried; the
// multi-turn session is never touched. Errors propagate so callers can run
// their own fallbacks.
func (s *Session) Send(ctx context.Context, message string, temperature float64, maxTokens int) (string, error) {
	reply, err := s.client.Complete(ctx, message, temperature, maxTokens)
	if err != nil {
		return "", err
	}

	s.appendTurn(message, reply)
	return reply, nil
}

// SendWithHistory threads prior turns through a lazily created multi-turn
// model session. Failures are converted to an in-band error string; the
// caller always receives text.
func (s *Session) SendWithHistory(ctx context.Context, message string, temperature float64, maxTokens int) string {
	s.mu.Lock()
	if s.remote == nil {
		s.remote = s.client.StartSession()
	}
	remote := s.remote
	s.mu.Unlock()

	reply, err := remote.Send(ctx, message, temperature, maxTokens)
	if err != nil {
		s.logger.Warn("chat with history failed", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Sprintf("Lỗi khi gọi Gemini API với lịch sử: %v", err)
	}

	s.appendTurn(message, reply)
	return reply
}

// Record appends a completed exchange produced outside the session, such
// as a pipeline answer, to the conversation history.
func (s *Session) Record(user, assistant string) {
	s.appendTurn(user, assistant)
}

// Clear discards the multi-turn session and the local history.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.remote = nil
}

// History returns a copy of the completed turns in order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) appendTurn(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{
		User:      user,
		Assistant: assistant,
		Timestamp: time.Now(),
	})
	if len(s.history) > maxHistoryTurns {
		trimmed := make([]Turn, maxHistoryTurns)
		copy(trimmed, s.history[len(s.history)-maxHistoryTurns:])
		s.history = trimmed
	}
}
