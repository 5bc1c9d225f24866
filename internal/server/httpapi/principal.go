package httpapi

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Principal is the verified identity attached to a request.
type Principal struct {
	UserID    int64  `json:"user_id"`
	UserName  string `json:"username"`
	Authority string `json:"authority"`
}

func principalFromClaims(c *auth.Claims) Principal {
	return Principal{UserID: c.UserID, UserName: c.Subject, Authority: c.Role}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal attached by the gate, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
