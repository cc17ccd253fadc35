package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prestobr/authd/internal/logging"
	"github.com/prestobr/authd/internal/server/auth"
	"github.com/prestobr/authd/internal/server/models"
	"github.com/prestobr/authd/internal/server/services"
)

// AuthService is the authentication surface consumed by the handlers.
// Implemented by services.AuthService.
type AuthService interface {
	Register(ctx context.Context, username, email, password string, roleNames []string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	UpdateRoles(ctx context.Context, userID int64, roleNames []string) error
	Roles(ctx context.Context) ([]*models.Role, error)
	Users(ctx context.Context) ([]*models.User, error)
	AllKeys(ctx context.Context) ([]*models.ApiKey, error)
}

// KeyService is the API-key surface consumed by the handlers and the auth
// middleware. Implemented by services.ApiKeyService.
type KeyService interface {
	Create(ctx context.Context, ownerUsername, description string, roleNames []string, expiresAt *time.Time) (*models.ApiKey, string, error)
	List(ctx context.Context, ownerUsername string) ([]*models.ApiKey, error)
	Update(ctx context.Context, ownerUsername string, keyID int64, patch services.ApiKeyPatch) (*models.ApiKey, error)
	Revoke(ctx context.Context, ownerUsername string, keyID int64) error
	VerifyKey(ctx context.Context, raw string) (*auth.Principal, error)
}

// HTTPServer exposes the authentication and API-key operations over REST.
type HTTPServer struct {
	address string
	logger  logging.Logger
	codec   *auth.Codec
	auth    AuthService
	keys    KeyService
	now     func() time.Time
}

func NewHTTPServer(a string, l logging.Logger, codec *auth.Codec, as AuthService, ks KeyService) *HTTPServer {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		codec:   codec,
		auth:    as,
		keys:    ks,
		now:     time.Now,
	}
}

// Router builds the route table. Exposed so tests can drive the handlers
// through httptest without binding a socket.
func (s *HTTPServer) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.principalMiddleware)

	r.HandleFunc("/v1/auth/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/login", s.login).Methods(http.MethodPost)

	admin := r.PathPrefix("/v1/auth").Subrouter()
	admin.Use(s.requireRole(adminRole))
	admin.HandleFunc("/roles", s.listRoles).Methods(http.MethodGet)
	admin.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	admin.HandleFunc("/api-keys", s.listAllKeys).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/roles", s.updateUserRoles).Methods(http.MethodPut)

	keys := r.PathPrefix("/v1/api-keys").Subrouter()
	keys.Use(s.requireAuth)
	keys.HandleFunc("", s.createKey).Methods(http.MethodPost)
	keys.HandleFunc("", s.listKeys).Methods(http.MethodGet)
	keys.HandleFunc("/{id}", s.updateKey).Methods(http.MethodPut)
	keys.HandleFunc("/{id}", s.revokeKey).Methods(http.MethodDelete)

	return r
}

// Run starts the server and blocks until ctx is cancelled, then shuts the
// server down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
