package users

import (
	"context"

	"github.com/prestobr/authd/internal/server/models"
)

// Repository persists users and their role assignments. Lookups return
// common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ReplaceRoles(ctx context.Context, userID int64, roles []models.Role) error
	List(ctx context.Context) ([]*models.User, error)
}
