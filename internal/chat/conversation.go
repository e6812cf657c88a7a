// Package chat owns the per-session conversation state and the orchestration
// of a user turn: persist, forward to the model collaborator, persist the
// reply. It is the only package that touches both the durable transcript and
// the model-visible history.
package chat

import (
	"sync"

	"google.golang.org/genai"

	"github.com/yesai/go-assistant-backend/internal/domain"
)

// Conversation is the live handle to one model conversation. It exists only
// in session memory: created at login or "new chat", discarded at logout.
// Exactly one turn is processed at a time; the internal mutex serializes
// SendTurn so a session cannot interleave turns.
type Conversation struct {
	mu           sync.Mutex
	history      []*genai.Content
	researchMode bool
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// NewConversationFromTranscript restores the model-visible history from a
// persisted transcript, so a returning user resumes with full context.
func NewConversationFromTranscript(msgs []domain.ChatMessage) *Conversation {
	c := &Conversation{history: make([]*genai.Content, 0, len(msgs))}
	for _, m := range msgs {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		c.history = append(c.history, genai.NewContentFromText(m.Content, role))
	}
	return c
}

// SetResearchMode toggles the deep-research prompt rewrite for subsequent
// turns.
func (c *Conversation) SetResearchMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.researchMode = on
}

// ResearchMode reports whether the deep-research rewrite is active.
func (c *Conversation) ResearchMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.researchMode
}

// Len returns the number of model-visible content blocks. Used by tests and
// diagnostics; the transcript in the store is the durable record.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history)
}
