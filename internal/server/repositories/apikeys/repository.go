package apikeys

import (
	"context"

	"github.com/prestobr/authd/internal/server/models"
)

// Repository persists API keys. Only derived values of the raw secret (the
// bcrypt hash and the keyed fingerprint) ever reach this layer. Lookups
// return common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, key *models.ApiKey) (*models.ApiKey, error)
	GetByID(ctx context.Context, id int64) (*models.ApiKey, error)
	// GetByIDForUpdate locks the key row for the duration of the enclosing
	// transaction, serializing concurrent update/revoke on the same key.
	GetByIDForUpdate(ctx context.Context, id int64) (*models.ApiKey, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.ApiKey, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.ApiKey, error)
	ListAll(ctx context.Context) ([]*models.ApiKey, error)
	Update(ctx context.Context, key *models.ApiKey) error
	ReplaceRoles(ctx context.Context, keyID int64, roles []models.Role) error
	SetActive(ctx context.Context, id int64, active bool) error
}
