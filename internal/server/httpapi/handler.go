package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const maxBodyBytes = 1 << 20

// UserService is the subset of services.UserService the handlers call.
type UserService interface {
	Signup(ctx context.Context, req services.SignupRequest) (*models.User, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.TokenPair, *models.User, error)
	Reissue(ctx context.Context, refreshToken string) (string, error)
	RefreshTokenLifetime() time.Duration
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	users        UserService
	checks       map[string]HealthCheck
	cookieSecure bool
	logger       logging.Logger
}

func NewHandler(users UserService, checks map[string]HealthCheck, cookieSecure bool, l logging.Logger) *Handler {
	return &Handler{users: users, checks: checks, cookieSecure: cookieSecure, logger: l.With("module", "http_handler")}
}

type authorityResponse struct {
	AuthorityName string `json:"authorityName"`
}

type signupResponse struct {
	Username    string              `json:"username"`
	Nickname    string              `json:"nickname"`
	Authorities []authorityResponse `json:"authorities"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}
	writeError(w, status, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"service": "gophauth", "status": "running"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failed := make([]string, 0)
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn(ctx, "health check failed", "dependency", name, "error", err.Error())
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.users.Signup(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{
		Username:    user.UserName,
		Nickname:    user.Nickname,
		Authorities: []authorityResponse{{AuthorityName: user.Authority}},
	})
}

func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, _, err := h.users.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set(common.AuthorizationHeaderName, common.BearerPrefix+pair.AccessToken)
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.users.RefreshTokenLifetime().Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, tokenResponse{Token: pair.AccessToken})
}

func (h *Handler) Reissue(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			h.fail(w, r, common.ErrInvalidRefreshToken)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid cookie")
		return
	}

	access, err := h.users.Reissue(r.Context(), cookie.Value)
	if err != nil {
		h.logger.Info(r.Context(), "reissue refused", "reason", err.Error())
		h.fail(w, r, err)
		return
	}

	w.Header().Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	writeJSON(w, http.StatusOK, tokenResponse{Token: access})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	writeJSON(w, http.StatusOK, p)
}
