package domain

import "strings"

// ID identifies a server-side entity. Numeric ids are kept as their decimal text.
type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}
