package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/cryptox"
	"github.com/prestobr/authd/internal/dbx"
	"github.com/prestobr/authd/internal/server/auth"
	"github.com/prestobr/authd/internal/server/models"
	"github.com/prestobr/authd/internal/server/repositories/repomanager"
)

// ApiKeyPatch carries the fields of a partial key update. Nil Description
// and ExpiresAt and an empty RoleNames leave the stored values unchanged.
type ApiKeyPatch struct {
	Description *string
	RoleNames   []string
	ExpiresAt   *time.Time
}

// ApiKeyService manages the API-key lifecycle: creation with one-time
// secret reveal, listing, partial updates, revocation, and verification of
// presented raw secrets.
type ApiKeyService struct {
	db             *sql.DB
	repos          repomanager.RepositoryManager
	fingerprintKey []byte
	now            func() time.Time
}

func NewApiKeyService(db *sql.DB, m repomanager.RepositoryManager, fingerprintKey []byte) *ApiKeyService {
	return &ApiKeyService{db: db, repos: m, fingerprintKey: fingerprintKey, now: time.Now}
}

// Create mints a new API key for the owner. The returned raw secret is the
// only time the plaintext value exists outside the caller: the store
// receives a bcrypt hash for verification and a keyed fingerprint for
// lookup, and neither is reversible to the secret.
func (s *ApiKeyService) Create(ctx context.Context, ownerUsername, description string, roleNames []string, expiresAt *time.Time) (*models.ApiKey, string, error) {
	owner, err := s.repos.Users(s.db).GetByUsername(ctx, ownerUsername)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrNotFound
		}
		return nil, "", common.ErrInternal
	}

	resolved, err := resolveRoles(ctx, s.repos.Roles(s.db), roleNames)
	if err != nil {
		return nil, "", err
	}

	raw := cryptox.NewRawSecret()
	hash, err := cryptox.HashSecret(raw)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	key := &models.ApiKey{
		Hash:          hash,
		Fingerprint:   cryptox.Fingerprint(raw, s.fingerprintKey),
		Description:   description,
		Active:        true,
		ExpiresAt:     expiresAt,
		OwnerID:       owner.ID,
		OwnerUsername: owner.Username,
		Roles:         resolved,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.ApiKeys(tx).Create(ctx, key)
		if err != nil {
			return err
		}
		key = created
		return nil
	}); err != nil {
		return nil, "", common.ErrInternal
	}

	return key, raw, nil
}

// List returns the owner's keys ordered by id ascending. The raw secret is
// not recoverable from the returned records.
func (s *ApiKeyService) List(ctx context.Context, ownerUsername string) ([]*models.ApiKey, error) {
	owner, err := s.repos.Users(s.db).GetByUsername(ctx, ownerUsername)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return s.repos.ApiKeys(s.db).ListByOwner(ctx, owner.ID)
}

// Update applies a partial update to an owned key. The row is locked for
// the duration of the transaction, so a concurrent revoke cannot be lost.
func (s *ApiKeyService) Update(ctx context.Context, ownerUsername string, keyID int64, patch ApiKeyPatch) (*models.ApiKey, error) {
	var updated *models.ApiKey

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		keyRepo := s.repos.ApiKeys(tx)

		key, err := keyRepo.GetByIDForUpdate(ctx, keyID)
		if err != nil {
			return err
		}
		if key.OwnerUsername != ownerUsername {
			return common.ErrNotOwner
		}

		if patch.Description != nil {
			key.Description = *patch.Description
		}
		if patch.ExpiresAt != nil {
			key.ExpiresAt = patch.ExpiresAt
		}
		if len(patch.RoleNames) > 0 {
			resolved, err := resolveRoles(ctx, s.repos.Roles(tx), patch.RoleNames)
			if err != nil {
				return err
			}
			if err := keyRepo.ReplaceRoles(ctx, key.ID, resolved); err != nil {
				return err
			}
			key.Roles = resolved
		}

		if err := keyRepo.Update(ctx, key); err != nil {
			return err
		}

		updated = key
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound),
			errors.Is(err, common.ErrNotOwner),
			errors.Is(err, common.ErrRoleNotFound):
			return nil, err
		default:
			return nil, common.ErrInternal
		}
	}

	return updated, nil
}

// Revoke deactivates an owned key. The record is kept for audit history;
// revoking an already-inactive key is a no-op.
func (s *ApiKeyService) Revoke(ctx context.Context, ownerUsername string, keyID int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		keyRepo := s.repos.ApiKeys(tx)

		key, err := keyRepo.GetByIDForUpdate(ctx, keyID)
		if err != nil {
			return err
		}
		if key.OwnerUsername != ownerUsername {
			return common.ErrNotOwner
		}

		return keyRepo.SetActive(ctx, key.ID, false)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrNotOwner):
			return err
		default:
			return common.ErrInternal
		}
	}

	return nil
}

// VerifyKey resolves a presented raw secret to a principal. The keyed
// fingerprint gives an O(1) index lookup; the bcrypt hash is then verified
// so a stored fingerprint alone never authenticates. Unknown, inactive and
// expired keys are indistinguishable to the caller.
func (s *ApiKeyService) VerifyKey(ctx context.Context, raw string) (*auth.Principal, error) {
	key, err := s.repos.ApiKeys(s.db).GetByFingerprint(ctx, cryptox.Fingerprint(raw, s.fingerprintKey))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrKeyInvalid
		}
		return nil, common.ErrInternal
	}

	if !cryptox.VerifySecret(raw, key.Hash) {
		return nil, common.ErrKeyInvalid
	}
	if !key.Active || key.Expired(s.now()) {
		return nil, common.ErrKeyInvalid
	}

	return &auth.Principal{Username: key.OwnerUsername, Roles: key.RoleNames()}, nil
}
