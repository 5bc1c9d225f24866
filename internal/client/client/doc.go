// Package client is the HTTP side of the gophauth CLI.
//
// HTTPClient talks to the gophauth API: Signup, Login, Me, Reissue and
// Logout. The access token returned by Login is kept in memory and sent as
// a Bearer Authorization header. The refresh token travels as an HttpOnly
// cookie and lives only in the client's cookie jar.
//
// When Me is refused with 401, typically because the access token expired,
// the client calls the reissue endpoint once and retries with the new token.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Non-2xx answers become
// *APIError; 401 answers also match ErrUnauthorized with errors.Is.
package client
