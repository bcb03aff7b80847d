// Package session keeps the signed-in user's token between CLI runs.
package session

import "context"

// Session is what the client remembers about the signed-in user.
type Session struct {
	Token  string
	UserID string
	Name   string
	Email  string
}

// Valid reports whether s carries a token.
func (s Session) Valid() bool {
	return s.Token != ""
}

// Store persists at most one Session. Get on an empty store returns the zero
// Session and no error.
type Store interface {
	Get(ctx context.Context) (Session, error)
	Set(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}
