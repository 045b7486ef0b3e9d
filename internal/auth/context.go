package auth

import (
	"context"

	"arvel.dev/salesline/internal/account"
)

// State is the terminal state of the authenticator for one request.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateExpired // expired access token, renewal pending
)

// Identity is the claims data attached to an authenticated request.
// Downstream handlers must treat it as read-only.
type Identity struct {
	UserID  int64        `json:"user_id"`
	Email   string       `json:"email"`
	Name    string       `json:"name"`
	Surname string       `json:"surname"`
	Role    account.Role `json:"role"`
}

// SecurityContext is the request-scoped authentication result. Each
// pipeline stage derives a new value instead of mutating a shared one;
// it is created fresh per request and never persisted.
type SecurityContext struct {
	State    State
	Identity *Identity
	RawToken string      // the expired token, kept for the renewal stage
	Source   TokenSource // where the bearer token was found
}

type securityContextKey struct{}

func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

func SecurityContextFrom(ctx context.Context) (*SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey{}).(*SecurityContext)
	return sc, ok
}

// IdentityFrom returns the authenticated identity, if any.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	sc, ok := SecurityContextFrom(ctx)
	if !ok || sc.State != StateAuthenticated || sc.Identity == nil {
		return nil, false
	}
	return sc.Identity, true
}
