package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/prestobr/authd/internal/client/api"
	"github.com/prestobr/authd/internal/client/config"
)

// apiClient is the server API surface the commands need. The real
// api.Client satisfies it; tests provide a stub.
type apiClient interface {
	Register(ctx context.Context, username, email string, password []byte, roles []string) (*api.User, error)
	Login(ctx context.Context, username string, password []byte) error
	Logout()
	LoggedIn() bool
	CreateKey(ctx context.Context, description string, roles []string, expiresAt *time.Time) (*api.ApiKey, error)
	ListKeys(ctx context.Context) ([]api.ApiKey, error)
	RevokeKey(ctx context.Context, keyID int64) error
}

type App struct {
	config   *config.Config
	api      apiClient
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	client := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	return &App{config: c, api: client, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		return "(" + a.userName + ")"
	}
	return ""
}
