// Package services contains server-side business logic. This file implements
// AuthService: registration, credential verification, bearer-token issuance,
// role administration, and admin listings.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/cryptox"
	"github.com/prestobr/authd/internal/dbx"
	"github.com/prestobr/authd/internal/server/auth"
	"github.com/prestobr/authd/internal/server/models"
	"github.com/prestobr/authd/internal/server/repositories/repomanager"
	"github.com/prestobr/authd/internal/server/repositories/roles"
)

// LoginResult bundles the signed bearer token with the echoed username.
type LoginResult struct {
	Token    string
	Username string
}

// AuthService provides authentication-related operations:
// - Register: create users with an optional role set
// - Login: verify credentials and mint a bearer token
// - UpdateRoles: replace a user's role set
// - Roles/Users/AllKeys: admin listings
type AuthService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	codec *auth.Codec
	now   func() time.Time
}

// NewAuthService constructs an AuthService using repositories and the token
// codec.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec) *AuthService {
	return &AuthService{db: db, repos: m, codec: codec, now: time.Now}
}

// Register creates a new active user. Duplicate username or email yields
// common.ErrConflict; an unknown role name yields common.ErrRoleNotFound
// (fail fast, no partial role set). The password is bcrypt-hashed before it
// is handed to the store.
func (s *AuthService) Register(ctx context.Context, username, email, password string, roleNames []string) (*models.User, error) {
	userRepo := s.repos.Users(s.db)

	taken, err := userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, common.ErrInternal
	}
	if taken {
		return nil, fmt.Errorf("username already exists: %w", common.ErrConflict)
	}

	taken, err = userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, common.ErrInternal
	}
	if taken {
		return nil, fmt.Errorf("email already exists: %w", common.ErrConflict)
	}

	resolved, err := resolveRoles(ctx, s.repos.Roles(s.db), roleNames)
	if err != nil {
		return nil, err
	}

	hash, err := cryptox.HashSecret(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Roles:        resolved,
	}

	// User row and role assignments land atomically.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		user = created
		return nil
	}); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the username/password pair and returns a signed token
// carrying the user's role names. An unknown username and a wrong password
// are indistinguishable to the caller; an inactive account is reported as
// common.ErrAccountInactive.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.repos.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if !cryptox.VerifySecret(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, common.ErrAccountInactive
	}

	token, err := s.codec.Issue(user.Username, user.RoleNames(), s.now())
	if err != nil {
		return nil, common.ErrInternal
	}

	return &LoginResult{Token: token, Username: user.Username}, nil
}

// UpdateRoles replaces the user's role set. The user must exist and every
// role name must resolve (fail fast).
func (s *AuthService) UpdateRoles(ctx context.Context, userID int64, roleNames []string) error {
	if _, err := s.repos.Users(s.db).GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return common.ErrInternal
	}

	resolved, err := resolveRoles(ctx, s.repos.Roles(s.db), roleNames)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Users(tx).ReplaceRoles(ctx, userID, resolved)
	})
}

// Roles lists all known roles.
func (s *AuthService) Roles(ctx context.Context) ([]*models.Role, error) {
	return s.repos.Roles(s.db).List(ctx)
}

// Users lists all users with their role sets.
func (s *AuthService) Users(ctx context.Context) ([]*models.User, error) {
	return s.repos.Users(s.db).List(ctx)
}

// AllKeys lists every API key in the system, for administrative reporting.
func (s *AuthService) AllKeys(ctx context.Context) ([]*models.ApiKey, error) {
	return s.repos.ApiKeys(s.db).ListAll(ctx)
}

// resolveRoles maps role names to stored roles, failing on the first
// unknown name so no partial set is ever assigned.
func resolveRoles(ctx context.Context, repo roles.Repository, names []string) ([]models.Role, error) {
	resolved := make([]models.Role, 0, len(names))
	for _, name := range names {
		role, err := repo.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", common.ErrRoleNotFound, name)
			}
			return nil, common.ErrInternal
		}
		resolved = append(resolved, *role)
	}
	return resolved, nil
}
