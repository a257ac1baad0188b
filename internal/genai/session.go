package genai

import (
	"context"
	"sync"
)

// maxContents caps the replayed history at 50 user/model exchanges.
// Older entries fall off so the request body cannot grow without bound.
const maxContents = 100

// Session is a multi-turn conversation. The REST API is stateless, so the
// session keeps the turn history locally and replays it on every call.
type Session struct {
	mu       sync.Mutex
	client   *Client
	contents []content
}

// StartSession opens a fresh multi-turn session backed by this client.
func (c *Client) StartSession() *Session {
	return &Session{client: c}
}

// Send appends the message to the session history, generates a reply with the
// full history as context, and records the reply as a model turn. The history
// is left untouched when the call fails.
func (s *Session) Send(ctx context.Context, message string, temperature float64, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]content, len(s.contents), len(s.contents)+2)
	copy(turns, s.contents)
	turns = append(turns, content{Role: "user", Parts: []part{{Text: message}}})

	reply, err := s.client.generate(ctx, turns, temperature, maxTokens)
	if err != nil {
		return "", err
	}

	s.contents = append(turns, content{Role: "model", Parts: []part{{Text: reply}}})
	if len(s.contents) > maxContents {
		trimmed := make([]content, maxContents)
		copy(trimmed, s.contents[len(s.contents)-maxContents:])
		s.contents = trimmed
	}
	return reply, nil
}

// Len returns the number of recorded turns (user and model combined).
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contents)
}
