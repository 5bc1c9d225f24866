package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

// API is the part of client.HTTPClient the CLI drives.
type API interface {
	Signup(ctx context.Context, req client.SignupRequest) (*client.SignupResult, error)
	Login(ctx context.Context, req client.LoginRequest) error
	Me(ctx context.Context) (*client.Principal, error)
	Reissue(ctx context.Context) error
	Logout() error
	LoggedIn() bool
}

type App struct {
	config   *config.Config
	api      API
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}
	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}

// Run starts the REPL on stdin and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	printlnFn(fmt.Sprintf("gophauth CLI, server %s (type 'help' for commands)", a.config.ServerURL))
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
