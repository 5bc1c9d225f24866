package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// TokenVerifier is what the gate needs from auth.Verifier.
type TokenVerifier interface {
	ExtractFromHeader(value string) (string, error)
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// DefaultPublicPaths never require a token.
var DefaultPublicPaths = []string{"/", "/health", "/signup", "/sign", "/access-token/reissue"}

// Gate authenticates each request once. Public paths pass untouched. On a
// protected path a verified bearer token attaches a Principal; an absent or
// rejected token lets the request continue anonymously so RequireAuth (or the
// handler) decides. A malformed header or an unreachable store stops the
// request.
type Gate struct {
	verifier TokenVerifier
	public   map[string]struct{}
	logger   logging.Logger
}

func NewGate(v TokenVerifier, l logging.Logger, publicPaths ...string) *Gate {
	if len(publicPaths) == 0 {
		publicPaths = DefaultPublicPaths
	}
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[normalizePath(p)] = struct{}{}
	}
	return &Gate{verifier: v, public: public, logger: l.With("module", "auth_gate")}
}

func normalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// IsPublic reports whether path bypasses verification.
func (g *Gate) IsPublic(path string) bool {
	_, ok := g.public[normalizePath(path)]
	return ok
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if g.IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := g.verifier.ExtractFromHeader(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			if errors.Is(err, common.ErrNoToken) {
				next.ServeHTTP(w, r)
				return
			}
			g.logger.Warn(ctx, "malformed authorization header", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := g.verifier.Verify(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrStoreUnavailable) {
				g.logger.Error(ctx, "user store unavailable during verification", "error", err.Error())
				writeError(w, http.StatusServiceUnavailable, common.ErrStoreUnavailable.Error())
				return
			}
			g.logger.Info(ctx, "token rejected", "path", r.URL.Path, "reason", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		p := principalFromClaims(claims)
		g.logger.Debug(ctx, "request authenticated", "user_id", p.UserID, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
	})
}

// RequireAuth rejects requests that reached it without a principal.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
