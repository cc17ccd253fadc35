package roles

import (
	"context"

	"github.com/prestobr/authd/internal/server/models"
)

// Repository reads roles. Roles are created by operators outside this
// service, so there is no write path here; GetByName returns
// common.ErrNotFound for an unknown name.
type Repository interface {
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
}
