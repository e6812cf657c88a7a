// Package session manages authenticated interactive sessions. A session is
// the lifetime of one logged-in connection: it owns the live conversation
// handle and bounds all transient per-user state. Sessions live only in
// process memory and are never shared between users.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yesai/go-assistant-backend/internal/chat"
	"github.com/yesai/go-assistant-backend/internal/domain"
)

// Session is the explicit per-login context passed to orchestrator and store
// calls: created at login, torn down at logout or expiry.
type Session struct {
	Token     string
	AccountID string
	Username  string
	Email     string
	CreatedAt time.Time

	mu           sync.Mutex
	conversation *chat.Conversation
	expiresAt    time.Time
}

// Conversation returns the session's live conversation handle.
func (s *Session) Conversation() *chat.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation
}

// ResetConversation swaps in a fresh conversation ("new chat"). The durable
// transcript is unaffected.
func (s *Session) ResetConversation(c *chat.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = c
}

// Manager maps bearer tokens to live sessions with sliding expiry.
// It is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	byToken map[string]*Session

	ttl time.Duration
	now func() time.Time
}

// NewManager returns a Manager whose sessions expire after ttl of inactivity.
// Non-positive ttl falls back to 12 hours.
func NewManager(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{
		byToken: make(map[string]*Session),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create opens a session for the account with the given conversation handle
// and returns it. The token is an opaque UUID.
func (m *Manager) Create(acct *domain.Account, conv *chat.Conversation) *Session {
	now := m.now()
	s := &Session{
		Token:        uuid.NewString(),
		AccountID:    acct.ID,
		Username:     acct.Username,
		Email:        acct.Email,
		CreatedAt:    now,
		conversation: conv,
		expiresAt:    now.Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	m.byToken[s.Token] = s
	return s
}

// Get resolves a token to its live session, extending the expiry on use.
// Expired or unknown tokens return (nil, false).
func (m *Manager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byToken[token]
	if !ok {
		return nil, false
	}
	now := m.now()
	if now.After(s.expiresAt) {
		delete(m.byToken, token)
		return nil, false
	}
	s.expiresAt = now.Add(m.ttl)
	return s, true
}

// Delete tears the session down (logout). All session-held state, the
// conversation handle included, is discarded with it.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
}

// Len reports the number of live (possibly expired, not yet swept) sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byToken)
}

// sweepLocked drops expired sessions. Caller holds m.mu.
func (m *Manager) sweepLocked() {
	now := m.now()
	for t, s := range m.byToken {
		if now.After(s.expiresAt) {
			delete(m.byToken, t)
		}
	}
}
