package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/gorilla/mux"
)

// NewRouter registers every route. The gate runs on all matched routes;
// protected routes additionally sit behind RequireAuth. CORS and access
// logging wrap the whole router so preflights and 404s are covered too.
func NewRouter(h *Handler, gate *Gate, corsOrigins []string, l logging.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(gate.Middleware)

	// public
	r.HandleFunc("/", h.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/signup", h.Signup).Methods(http.MethodPost)
	r.HandleFunc("/sign", h.Sign).Methods(http.MethodPost)
	r.HandleFunc("/access-token/reissue", h.Reissue).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(RequireAuth)
	protected.HandleFunc("/users/me", h.Me).Methods(http.MethodGet)

	return AccessLog(l)(CORS(corsOrigins)(r))
}
