package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
	"go.uber.org/zap"
)

var ErrSessionDisposed = errors.New("session store is disposed")

// SessionStore is the single writer of a SessionState. Every token or user
// change is written through to the repository.
type SessionStore struct {
	state  *SessionState
	repo   ports.SessionRepository
	auth   ports.AuthAPI
	clock  ports.Clock
	logger *zap.Logger

	// writeMu serializes mutations so the persisted entry always matches the
	// last in-memory write.
	writeMu  sync.Mutex
	initOnce sync.Once
	initErr  error
	disposed bool
}

func NewSessionStore(state *SessionState, repo ports.SessionRepository, auth ports.AuthAPI, clock ports.Clock, logger *zap.Logger) *SessionStore {
	if state == nil {
		state = NewSessionState()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SessionStore{
		state:  state,
		repo:   repo,
		auth:   auth,
		clock:  clock,
		logger: logger.Named("session"),
	}
}

// Tokens exposes the read-only token capability for the request pipeline.
func (s *SessionStore) Tokens() ports.TokenProvider {
	return s.state
}

// Initialize hydrates the session from the repository. It runs once; later
// calls return the first result. Expired or unreadable entries are cleared
// and logged, never returned as errors.
func (s *SessionStore) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.hydrate(ctx)
	})
	return s.initErr
}

func (s *SessionStore) hydrate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	persisted, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.state.replace(domain.Session{Initialized: true})
		return nil
	case errors.Is(err, domain.ErrCorruptSession):
		s.clearPersisted(ctx, "persisted session is unreadable", zap.Error(err))
		s.state.replace(domain.Session{Initialized: true})
		return nil
	case err != nil:
		// Unreadable for now (permissions, a newer schema): keep the file.
		s.logger.Warn("load persisted session; starting signed out", zap.Error(err))
		s.state.replace(domain.Session{Initialized: true})
		return nil
	}

	if persisted.Token == "" {
		if persisted.User != nil {
			s.clearPersisted(ctx, "persisted user has no token")
		}
		s.state.replace(domain.Session{Initialized: true})
		return nil
	}

	info, err := inspectToken(persisted.Token)
	if err != nil {
		s.clearPersisted(ctx, "persisted token is corrupt", zap.Error(err))
		s.state.replace(domain.Session{Initialized: true})
		return nil
	}
	if info.expired(s.clock.Now()) {
		s.clearPersisted(ctx, "persisted token has expired", zap.Time("expired_at", info.ExpiresAt))
		s.state.replace(domain.Session{Initialized: true})
		return nil
	}

	s.state.replace(domain.Session{Token: persisted.Token, User: persisted.User, Initialized: true})
	return nil
}

func (s *SessionStore) clearPersisted(ctx context.Context, reason string, fields ...zap.Field) {
	s.logger.Warn(reason+"; signing out", fields...)
	if err := s.repo.Delete(ctx); err != nil {
		s.logger.Warn("delete persisted session", zap.Error(err))
	}
}

// SetToken replaces the token. The next TokenProvider read observes it.
func (s *SessionStore) SetToken(ctx context.Context, token string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.disposed {
		return ErrSessionDisposed
	}
	s.state.setToken(token)
	return s.persist(ctx)
}

func (s *SessionStore) SetUser(ctx context.Context, user *domain.UserSummary) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.disposed {
		return ErrSessionDisposed
	}
	s.state.setUser(user)
	return s.persist(ctx)
}

// LoginWithCredentials exchanges credentials for a token and stores it. A
// failed call or an unrecognized response body yields *domain.AuthError.
func (s *SessionStore) LoginWithCredentials(ctx context.Context, credentials domain.Credentials) (string, error) {
	body, err := s.auth.IssueToken(ctx, credentials)
	if err != nil {
		return "", domain.NewAuthError(err)
	}

	token, err := extractToken(body)
	if err != nil {
		return "", domain.NewAuthError(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.disposed {
		return "", ErrSessionDisposed
	}

	current := s.state.Snapshot()
	next := domain.Session{Token: token, User: current.User, Initialized: current.Initialized}
	if current.Token != token && !userMatches(current.User, TokenSubject(token)) {
		next.User = nil
	}
	s.state.replace(next)

	if err := s.persist(ctx); err != nil {
		return token, err
	}

	s.logger.Debug("signed in", zap.Bool("jwt", TokenSubject(token) != ""))
	return token, nil
}

// Logout clears the session and removes the persisted entry. Calling it when
// already signed out is a no-op.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	initialized := s.state.Snapshot().Initialized
	s.state.replace(domain.Session{Initialized: initialized})

	if err := s.repo.Delete(ctx); err != nil {
		return fmt.Errorf("delete persisted session: %w", err)
	}
	return nil
}

func (s *SessionStore) Session() domain.Session {
	return s.state.Snapshot()
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.state.Token() != ""
}

// Dispose drops the in-memory session without touching storage. Later
// writes fail with ErrSessionDisposed.
func (s *SessionStore) Dispose() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.disposed = true
	s.state.replace(domain.Session{})
}

func (s *SessionStore) persist(ctx context.Context) error {
	persisted := s.state.persisted()
	if persisted.IsEmpty() {
		if err := s.repo.Delete(ctx); err != nil {
			return fmt.Errorf("delete persisted session: %w", err)
		}
		return nil
	}

	if err := s.repo.Save(ctx, persisted); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func userMatches(user *domain.UserSummary, subject domain.ID) bool {
	return user != nil && !subject.IsZero() && user.ID == subject
}
