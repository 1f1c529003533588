package domain

type UserSummary struct {
	ID        ID     `json:"id" yaml:"id" toml:"id"`
	Username  string `json:"username" yaml:"username" toml:"username"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty"`
	IsActive  bool   `json:"isActive" yaml:"is_active" toml:"is_active"`
	CreatedAt string `json:"createdAt" yaml:"created_at" toml:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
