// Package auth issues, encodes and verifies the JWTs that carry a user's
// identity between requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	Role   string `json:"role"`
	UserID int64  `json:"user_id"`
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// Codec signs and parses tokens with a single HMAC key. The key is fixed for
// the codec's lifetime; a Codec is safe for concurrent use.
type Codec struct {
	key    []byte
	method *jwt.SigningMethodHMAC
	issuer string
	now    func() time.Time
}

// NewCodec picks the strongest HMAC variant the key length allows and
// rejects keys shorter than 256 bits with common.ErrWeakSecret.
func NewCodec(secret []byte, issuer string, opts ...CodecOption) (*Codec, error) {
	method, err := methodForKey(secret)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		key:    append([]byte(nil), secret...),
		method: method,
		issuer: issuer,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func methodForKey(secret []byte) (*jwt.SigningMethodHMAC, error) {
	switch n := len(secret); {
	case n >= 64:
		return jwt.SigningMethodHS512, nil
	case n >= 48:
		return jwt.SigningMethodHS384, nil
	case n >= 32:
		return jwt.SigningMethodHS256, nil
	default:
		return nil, fmt.Errorf("%w: %d bytes, need at least 32", common.ErrWeakSecret, n)
	}
}

// Algorithm returns the JWS alg header this codec writes and accepts.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Encode fills issuer, a fresh token id, issued-at and expiresAt into claims
// and returns the signed compact token.
func (c *Codec) Encode(claims Claims, expiresAt time.Time) (string, error) {
	claims.Issuer = c.issuer
	claims.ID = uuid.NewString()
	claims.IssuedAt = jwt.NewNumericDate(c.now())
	claims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Decode verifies token and returns its claims. A correctly signed token
// past its expiry yields common.ErrTokenExpired; every other failure yields
// common.ErrTokenInvalid.
func (c *Codec) Decode(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// expiry only counts when nothing else about the token is wrong
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenInvalidIssuer) {
			return nil, fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
	}

	if !parsed.Valid {
		return nil, common.ErrTokenInvalid
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user_id claim", common.ErrTokenInvalid)
	}

	return claims, nil
}
