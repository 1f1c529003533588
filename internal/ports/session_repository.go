package ports

import (
	"context"

	"github.com/bnema/gosocial-cli/internal/domain"
)

type SessionRepository interface {
	// Load returns domain.ErrSessionNotFound when nothing was persisted.
	Load(ctx context.Context) (domain.PersistedSession, error)
	Save(ctx context.Context, session domain.PersistedSession) error
	Delete(ctx context.Context) error
}
