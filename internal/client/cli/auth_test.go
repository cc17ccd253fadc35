package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prestobr/authd/internal/client/api"
)

type fakeAPI struct {
	loggedIn bool

	registerErr  error
	registeredAs string

	loginErr  error
	loggedAs  string
	sawPasswd string

	createOut *api.ApiKey
	createErr error

	listOut []api.ApiKey
	listErr error

	revokeErr error
	revokedID int64
}

func (f *fakeAPI) Register(ctx context.Context, username, email string, password []byte, roles []string) (*api.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registeredAs = username
	return &api.User{ID: 1, Username: username, Email: email, Active: true}, nil
}

func (f *fakeAPI) Login(ctx context.Context, username string, password []byte) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.loggedAs = username
	f.sawPasswd = string(password)
	f.loggedIn = true
	return nil
}

func (f *fakeAPI) Logout()        { f.loggedIn = false }
func (f *fakeAPI) LoggedIn() bool { return f.loggedIn }

func (f *fakeAPI) CreateKey(ctx context.Context, description string, roles []string, expiresAt *time.Time) (*api.ApiKey, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeAPI) ListKeys(ctx context.Context) ([]api.ApiKey, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeAPI) RevokeKey(ctx context.Context, keyID int64) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revokedID = keyID
	return nil
}

// stubInput replaces the interactive input seams with canned answers.
// Lines are consumed in order by getSimpleText; the password is fixed.
func stubInput(t *testing.T, lines []string, password string) {
	t.Helper()
	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })

	i := 0
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if i >= len(lines) {
			return "", io.EOF
		}
		line := lines[i]
		i++
		return line, nil
	}
	getPassword = func(_ io.Writer) ([]byte, error) {
		return []byte(password), nil
	}
}

func newTestApp(f *fakeAPI) *App {
	return &App{api: f, reader: bufio.NewReader(strings.NewReader(""))}
}

func TestRegister(t *testing.T) {
	f := &fakeAPI{}
	a := newTestApp(f)
	stubInput(t, []string{"alice", "alice@example.com"}, "pw")

	if err := a.Register(context.Background()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if f.registeredAs != "alice" {
		t.Fatalf("expected register call for alice, got %q", f.registeredAs)
	}
}

func TestRegister_ServiceError(t *testing.T) {
	f := &fakeAPI{registerErr: api.ErrConflict}
	a := newTestApp(f)
	stubInput(t, []string{"alice", "alice@example.com"}, "pw")

	if err := a.Register(context.Background()); !errors.Is(err, api.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLoginLogout(t *testing.T) {
	f := &fakeAPI{}
	a := newTestApp(f)
	stubInput(t, []string{"alice"}, "pw")

	if err := a.Login(context.Background()); err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if f.loggedAs != "alice" || f.sawPasswd != "pw" {
		t.Fatalf("unexpected login call: %q/%q", f.loggedAs, f.sawPasswd)
	}
	if !a.isLoggedIn() || a.getStatus() != "(alice)" {
		t.Fatalf("unexpected state: loggedIn=%v status=%q", a.isLoggedIn(), a.getStatus())
	}

	if err := a.Logout(context.Background()); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if a.isLoggedIn() || a.getStatus() != "" {
		t.Fatalf("expected logged-out state, got status %q", a.getStatus())
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	f := &fakeAPI{loginErr: api.ErrUnauthorized}
	a := newTestApp(f)
	stubInput(t, []string{"alice"}, "wrong")

	if err := a.Login(context.Background()); !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if a.isLoggedIn() {
		t.Fatal("must not be logged in after a failed login")
	}
}
