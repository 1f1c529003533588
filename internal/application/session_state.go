package application

import (
	"sync"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
)

// SessionState holds the live token and user. Its exported surface is read
// only; SessionStore is the single writer.
type SessionState struct {
	mu      sync.RWMutex
	session domain.Session
}

var _ ports.TokenProvider = (*SessionState)(nil)

func NewSessionState() *SessionState {
	return &SessionState{}
}

// Token returns the current bearer token, or "" when signed out.
func (s *SessionState) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Snapshot returns a copy that shares no memory with the state.
func (s *SessionState) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	out.User = copyUser(s.session.User)
	return out
}

func (s *SessionState) setToken(token string) {
	s.mu.Lock()
	s.session.Token = token
	s.mu.Unlock()
}

func (s *SessionState) setUser(user *domain.UserSummary) {
	user = copyUser(user)
	s.mu.Lock()
	s.session.User = user
	s.mu.Unlock()
}

func (s *SessionState) replace(session domain.Session) {
	session.User = copyUser(session.User)
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

func (s *SessionState) persisted() domain.PersistedSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.PersistedSession{Token: s.session.Token, User: copyUser(s.session.User)}
}

func copyUser(user *domain.UserSummary) *domain.UserSummary {
	if user == nil {
		return nil
	}
	clone := *user
	return &clone
}
