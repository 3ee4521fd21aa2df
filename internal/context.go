package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextIdentityKey ctxKey = "identity"
)

// Identity is what the authorization gate resolves for a request: the user
// code and role the portal confirmed plus the bearer token it validated.
type Identity struct {
	UserCode    string
	RoleID      int64
	AccessToken string
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(ContextIdentityKey).(Identity)
	if !ok || id.UserCode == "" {
		return Identity{}, false
	}
	return id, true
}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ContextIdentityKey, id)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
