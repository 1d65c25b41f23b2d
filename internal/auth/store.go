package auth

import "context"

// UserStore persists operator accounts.
type UserStore interface {
	Save(ctx context.Context, user User) error
	FindByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// SessionStore persists login sessions. Implementations enforce expiry; an
// expired session behaves exactly like a deleted one.
type SessionStore interface {
	Put(ctx context.Context, session Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	IsSessionActive(ctx context.Context, id string) (bool, error)
}
