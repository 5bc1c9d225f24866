// Package cli provides the interactive gophauth command-line client.
//
// It wires configuration and the HTTP API client into a small REPL:
// signup, login, whoami, reissue and logout. Passwords are read without
// echo and wiped after use.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
