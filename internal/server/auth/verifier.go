package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// UserChecker answers whether a user id still refers to an account.
type UserChecker interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
}

// Verifier turns a bearer token into trusted claims.
type Verifier struct {
	codec        *Codec
	users        UserChecker
	storeTimeout time.Duration
}

func NewVerifier(codec *Codec, users UserChecker, storeTimeout time.Duration) *Verifier {
	return &Verifier{codec: codec, users: users, storeTimeout: storeTimeout}
}

// ExtractFromHeader returns the token carried by an Authorization header
// value. A missing or non-bearer header yields common.ErrNoToken; a bearer
// header whose token is empty or not a compact JWS yields
// common.ErrMalformedAuthHeader.
func (v *Verifier) ExtractFromHeader(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", common.ErrNoToken
	}

	// net/http trims trailing spaces, so "Bearer " arrives as "Bearer"
	if value == strings.TrimSpace(common.BearerPrefix) {
		return "", common.ErrMalformedAuthHeader
	}

	token, ok := strings.CutPrefix(value, common.BearerPrefix)
	if !ok {
		return "", common.ErrNoToken
	}

	if token == "" || strings.ContainsAny(token, " \t\r\n") {
		return "", common.ErrMalformedAuthHeader
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", common.ErrMalformedAuthHeader
	}

	return token, nil
}

// Verify decodes token and checks that its user still exists.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := v.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, v.storeTimeout)
	defer cancel()

	exists, err := v.users.ExistsByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	if !exists {
		return nil, common.ErrUserNotFound
	}

	return claims, nil
}

// UserIDFromRefreshToken decodes a refresh token and returns its user id.
// It does not consult the user store.
func (v *Verifier) UserIDFromRefreshToken(token string) (int64, error) {
	claims, err := v.codec.Decode(token)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}
