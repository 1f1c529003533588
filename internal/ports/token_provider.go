package ports

// TokenProvider reads the current bearer token. An empty string means no token.
type TokenProvider interface {
	Token() string
}

type TokenProviderFunc func() string

func (f TokenProviderFunc) Token() string {
	return f()
}
