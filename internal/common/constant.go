package common

const (
	// AuthorizationHeaderName carries the access token on requests and
	// the freshly issued access token on login/reissue responses.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token in the Authorization header.
	BearerPrefix = "Bearer "

	// RefreshTokenCookieName is the cookie holding the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// RefreshTokenValidFlag is the value stored for a usable refresh token.
	RefreshTokenValidFlag = "true"

	// DefaultAuthority is assigned to every user created through signup.
	DefaultAuthority = "ROLE_USER"
)
