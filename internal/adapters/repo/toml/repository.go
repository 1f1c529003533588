package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/gosocial-cli/internal/domain"
	"github.com/bnema/gosocial-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	SessionPathKey    = "session.path"
	sessionFileMode   = 0o600
	sessionDirMode    = 0o700
	sessionConfigDir  = ".config/gosocial"
	sessionConfigFile = "session.toml"
	tempFilePattern   = ".session-*.toml.tmp"
)

// SessionRepository keeps one session entry in a TOML file, under the
// gosocial_auth_v1 table.
type SessionRepository struct {
	path string
	now  func() time.Time
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(cfg *viper.Viper) (*SessionRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(SessionPathKey)
	if path == "" {
		defaultPath, err := DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &SessionRepository{path: path, now: time.Now, mu: lockForPath(path)}, nil
}

func DefaultSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, sessionConfigDir, sessionConfigFile), nil
}

func (r *SessionRepository) Path() string {
	return r.path
}

func (r *SessionRepository) Load(ctx context.Context) (domain.PersistedSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.PersistedSession{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.PersistedSession{}, err
	}
	if file.Auth == nil {
		return domain.PersistedSession{}, domain.ErrSessionNotFound
	}

	return fromSchema(*file.Auth), nil
}

func (r *SessionRepository) Save(ctx context.Context, session domain.PersistedSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	encoded := toSchema(session)
	encoded.SavedAt = r.now().UTC().Format(time.RFC3339)
	file := fileSchema{Auth: &encoded}
	file.applyDefaults()

	if err := ctx.Err(); err != nil {
		return err
	}

	return writeTOMLFile(r.path, file)
}

// Delete removes the session file. A missing file is not an error.
func (r *SessionRepository) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session file: %w", err)
	}
	return nil
}

func (r *SessionRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode session file: %w: %w", domain.ErrCorruptSession, err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve session path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// writeTOMLFile replaces path atomically through a temp file in the same
// directory.
func writeTOMLFile(path string, file any) error {
	if err := os.MkdirAll(filepath.Dir(path), sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}

	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(path, sessionFileMode); err != nil {
		return fmt.Errorf("chmod session file: %w", err)
	}

	return nil
}

func toSchema(session domain.PersistedSession) sessionSchema {
	encoded := sessionSchema{Token: session.Token}
	if session.User != nil {
		encoded.User = &userSchema{
			ID:        session.User.ID.String(),
			Username:  session.User.Username,
			Email:     session.User.Email,
			IsActive:  session.User.IsActive,
			CreatedAt: session.User.CreatedAt,
		}
	}
	return encoded
}

func fromSchema(schema sessionSchema) domain.PersistedSession {
	session := domain.PersistedSession{Token: schema.Token}
	if schema.User != nil {
		session.User = &domain.UserSummary{
			ID:        domain.ID(schema.User.ID),
			Username:  schema.User.Username,
			Email:     schema.User.Email,
			IsActive:  schema.User.IsActive,
			CreatedAt: schema.User.CreatedAt,
		}
	}
	return session
}
