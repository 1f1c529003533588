package domain

// Session is the client-side authentication state. An empty Token means no session.
type Session struct {
	Token       string
	User        *UserSummary
	Initialized bool
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// PersistedSession is the part of Session written to storage.
type PersistedSession struct {
	Token string
	User  *UserSummary
}

func (p PersistedSession) IsEmpty() bool {
	return p.Token == "" && p.User == nil
}
