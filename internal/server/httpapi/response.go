package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

var unauthorizedErrors = []error{
	common.ErrUserNotFound,
	common.ErrInvalidCredentials,
	common.ErrTokenExpired,
	common.ErrTokenInvalid,
	common.ErrInvalidRefreshToken,
	common.ErrMalformedAuthHeader,
	common.ErrNoToken,
}

// statusFor maps a service error onto an HTTP status and a client-safe
// message. Unknown errors never leak their text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateUsername):
		return http.StatusConflict, common.ErrDuplicateUsername.Error()
	case errors.Is(err, common.ErrDuplicateNickname):
		return http.StatusConflict, common.ErrDuplicateNickname.Error()
	case errors.Is(err, common.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, common.ErrStoreUnavailable.Error()
	}

	for _, target := range unauthorizedErrors {
		if errors.Is(err, target) {
			return http.StatusUnauthorized, target.Error()
		}
	}

	return http.StatusInternalServerError, common.ErrorInternal.Error()
}
