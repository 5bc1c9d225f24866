package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for username, nickname and password and registers the
// account. The password buffer is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	nickname, err := getSimpleText(a.reader, "Enter nickname", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Signup(ctx, client.SignupRequest{Username: userName, Password: string(password), Nickname: nickname})
	if err != nil {
		return err
	}

	printlnFn("Account created:", res.Username)
	return nil
}

// Login prompts for credentials and signs in. On success the status prompt
// shows the username.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.Login(ctx, client.LoginRequest{Username: userName, Password: string(password)}); err != nil {
		return err
	}

	a.userName = userName
	printlnFn("Login successful")
	return nil
}

// WhoAmI prints the identity the server sees behind the current token.
func (a *App) WhoAmI(ctx context.Context) error {
	p, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	printlnFn("id:", p.UserID, "username:", p.UserName, "authority:", p.Authority)
	return nil
}

// Reissue exchanges the refresh cookie for a new access token.
func (a *App) Reissue(ctx context.Context) error {
	if err := a.api.Reissue(ctx); err != nil {
		return err
	}
	printlnFn("Access token reissued")
	return nil
}

// Logout forgets both tokens locally.
func (a *App) Logout(ctx context.Context) error {
	if err := a.api.Logout(); err != nil {
		return err
	}
	a.userName = ""
	printlnFn("Logged out")
	return nil
}
