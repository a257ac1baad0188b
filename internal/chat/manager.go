package chat

import (
	"sync"

	"github.com/huyvu15/Agentic-search-company/internal/common/logger"
	"github.com/huyvu15/Agentic-search-company/internal/genai"
)

// DefaultConversationID is used when a request carries no conversation id.
const DefaultConversationID = "default"

// Manager hands out one Session per conversation id, so concurrent
// conversations never interleave their turns into a shared history.
type Manager struct {
	mu       sync.Mutex
	client   *genai.Client
	logger   logger.Logger
	sessions map[string]*Session
}

func NewManager(client *genai.Client, log logger.Logger) *Manager {
	return &Manager{
		client:   client,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the conversation id, creating it on first use.
// An empty id maps to DefaultConversationID.
func (m *Manager) Get(id string) *Session {
	if id == "" {
		id = DefaultConversationID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		session = NewSession(m.client, m.logger.With(map[string]interface{}{
			"conversation": id,
		}))
		m.sessions[id] = session
	}
	return session
}
