package client

// SignupRequest is the registration payload.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest is the sign-in payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authority is one granted role.
type Authority struct {
	AuthorityName string `json:"authorityName"`
}

// SignupResult echoes the created user.
type SignupResult struct {
	Username    string      `json:"username"`
	Nickname    string      `json:"nickname"`
	Authorities []Authority `json:"authorities"`
}

// Principal is the caller identity reported by /users/me.
type Principal struct {
	UserID    int64  `json:"user_id"`
	UserName  string `json:"username"`
	Authority string `json:"authority"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}
