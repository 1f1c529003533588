package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int            `toml:"version"`
	Auth    *sessionSchema `toml:"gosocial_auth_v1,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type sessionSchema struct {
	Token   string      `toml:"token"`
	SavedAt string      `toml:"saved_at,omitempty"`
	User    *userSchema `toml:"user,omitempty"`
}

type userSchema struct {
	ID        string `toml:"id"`
	Username  string `toml:"username"`
	Email     string `toml:"email,omitempty"`
	IsActive  bool   `toml:"is_active"`
	CreatedAt string `toml:"created_at,omitempty"`
}
