package services

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// MinPasswordLength is the shortest password accepted at signup.
const MinPasswordLength = 4

// SignupRequest is the registration payload.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// Validate reports the first invalid field wrapped in common.ErrValidation.
func (r SignupRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username must not be blank", common.ErrValidation)
	}
	if strings.TrimSpace(r.Nickname) == "" {
		return fmt.Errorf("%w: nickname must not be blank", common.ErrValidation)
	}
	if len(r.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, MinPasswordLength)
	}
	return nil
}

// LoginRequest is the credential payload for sign-in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username must not be blank", common.ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password must not be blank", common.ErrValidation)
	}
	return nil
}
