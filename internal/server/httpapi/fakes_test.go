package httpapi

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/logging"
	"github.com/prestobr/authd/internal/server/auth"
	"github.com/prestobr/authd/internal/server/models"
	"github.com/prestobr/authd/internal/server/services"
)

type fakeAuthService struct {
	registerOut *models.User
	registerErr error

	loginOut *services.LoginResult
	loginErr error

	updateRolesErr error
	updatedUserID  int64
	updatedRoles   []string

	rolesOut []*models.Role
	usersOut []*models.User
	keysOut  []*models.ApiKey
}

func (f *fakeAuthService) Register(ctx context.Context, username, email, password string, roleNames []string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}

func (f *fakeAuthService) UpdateRoles(ctx context.Context, userID int64, roleNames []string) error {
	if f.updateRolesErr != nil {
		return f.updateRolesErr
	}
	f.updatedUserID = userID
	f.updatedRoles = roleNames
	return nil
}

func (f *fakeAuthService) Roles(ctx context.Context) ([]*models.Role, error)    { return f.rolesOut, nil }
func (f *fakeAuthService) Users(ctx context.Context) ([]*models.User, error)    { return f.usersOut, nil }
func (f *fakeAuthService) AllKeys(ctx context.Context) ([]*models.ApiKey, error) { return f.keysOut, nil }

type fakeKeyService struct {
	createOut *models.ApiKey
	createRaw string
	createErr error
	createdBy string

	listOut []*models.ApiKey
	listErr error

	updateOut   *models.ApiKey
	updateErr   error
	updatedBy   string
	updatedID   int64
	updatePatch services.ApiKeyPatch

	revokeErr error
	revokedBy string
	revokedID int64

	verifyOut *auth.Principal
	verifyRaw string
}

func (f *fakeKeyService) Create(ctx context.Context, ownerUsername, description string, roleNames []string, expiresAt *time.Time) (*models.ApiKey, string, error) {
	if f.createErr != nil {
		return nil, "", f.createErr
	}
	f.createdBy = ownerUsername
	return f.createOut, f.createRaw, nil
}

func (f *fakeKeyService) List(ctx context.Context, ownerUsername string) ([]*models.ApiKey, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeKeyService) Update(ctx context.Context, ownerUsername string, keyID int64, patch services.ApiKeyPatch) (*models.ApiKey, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedBy = ownerUsername
	f.updatedID = keyID
	f.updatePatch = patch
	return f.updateOut, nil
}

func (f *fakeKeyService) Revoke(ctx context.Context, ownerUsername string, keyID int64) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revokedBy = ownerUsername
	f.revokedID = keyID
	return nil
}

func (f *fakeKeyService) VerifyKey(ctx context.Context, raw string) (*auth.Principal, error) {
	if f.verifyOut != nil && raw == f.verifyRaw {
		return f.verifyOut, nil
	}
	return nil, common.ErrKeyInvalid
}

func newTestServer(t *testing.T, as *fakeAuthService, ks *fakeKeyService) *HTTPServer {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	codec := auth.NewCodec([]byte("test-signing-key"), time.Hour)
	return NewHTTPServer(":0", logger, codec, as, ks)
}

func bearerFor(t *testing.T, s *HTTPServer, username string, roles ...string) string {
	t.Helper()
	token, err := s.codec.Issue(username, roles, time.Now())
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return common.BearerPrefix + token
}
