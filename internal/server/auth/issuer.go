package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints access and refresh tokens for a user. Refresh tokens are only
// usable while their validity record lives in the refresh-token store.
type Issuer struct {
	codec        *Codec
	store        refreshtokens.Store
	accessTTL    time.Duration
	refreshTTL   time.Duration
	storeTimeout time.Duration
}

func NewIssuer(codec *Codec, store refreshtokens.Store, accessTTL, refreshTTL, storeTimeout time.Duration) *Issuer {
	return &Issuer{
		codec:        codec,
		store:        store,
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
		storeTimeout: storeTimeout,
	}
}

// RefreshTokenLifetime is how long a refresh token and its record stay valid.
func (i *Issuer) RefreshTokenLifetime() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) claimsFor(user *models.User) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.UserName},
		Role:             user.Authority,
		UserID:           user.ID,
	}
}

// IssueAccessToken returns a signed access token for user.
func (i *Issuer) IssueAccessToken(user *models.User) (string, error) {
	return i.codec.Encode(i.claimsFor(user), i.codec.now().Add(i.accessTTL))
}

// IssueRefreshToken returns a signed refresh token for user and records it
// as valid for the refresh lifetime. On error the token must be discarded.
func (i *Issuer) IssueRefreshToken(ctx context.Context, user *models.User) (string, error) {
	token, err := i.codec.Encode(i.claimsFor(user), i.codec.now().Add(i.refreshTTL))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, i.storeTimeout)
	defer cancel()

	if err := i.store.Put(ctx, token, common.RefreshTokenValidFlag); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}
	if err := i.store.SetExpire(ctx, token, i.refreshTTL); err != nil {
		// a record without TTL would keep the token valid forever
		cleanupCtx, cleanupCancel := context.WithTimeout(context.WithoutCancel(ctx), i.storeTimeout)
		_ = i.store.Delete(cleanupCtx, token)
		cleanupCancel()
		return "", fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
	}

	return token, nil
}
