package apikeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/dbx"
	"github.com/prestobr/authd/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const keyColumns = `k.id, k.key_hash, k.key_fingerprint, k.description, k.active,
		 k.created_at, k.expires_at, k.user_id, u.username`

func (r *PostgresRepository) Create(ctx context.Context, key *models.ApiKey) (*models.ApiKey, error) {

	query :=
		`INSERT INTO api_keys (key_hash, key_fingerprint, description, active, expires_at, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		key.Hash, key.Fingerprint, key.Description, key.Active, key.ExpiresAt, key.OwnerID).
		Scan(&key.ID, &key.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, role := range key.Roles {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO api_key_roles (api_key_id, role_id) VALUES ($1, $2)`,
			key.ID, role.ID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	return key, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.ApiKey, error) {
	query :=
		`SELECT ` + keyColumns + ` FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 WHERE k.id = $1
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.ApiKey, error) {
	query :=
		`SELECT ` + keyColumns + ` FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 WHERE k.id = $1
		 FOR UPDATE OF k
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.ApiKey, error) {
	query :=
		`SELECT ` + keyColumns + ` FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 WHERE k.key_fingerprint = $1
		 `

	return r.getOne(ctx, query, fingerprint)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.ApiKey, error) {
	key := &models.ApiKey{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&key.ID, &key.Hash, &key.Fingerprint, &key.Description, &key.Active,
		&key.CreatedAt, &key.ExpiresAt, &key.OwnerID, &key.OwnerUsername)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	roles, err := r.loadRoles(ctx, key.ID)
	if err != nil {
		return nil, err
	}
	key.Roles = roles

	return key, nil
}

func (r *PostgresRepository) loadRoles(ctx context.Context, keyID int64) ([]models.Role, error) {
	query :=
		`SELECT r.id, r.name FROM roles r
		 JOIN api_key_roles kr ON kr.role_id = r.id
		 WHERE kr.api_key_id = $1
		 ORDER BY r.id
		 `

	rows, err := r.db.QueryContext(ctx, query, keyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return roles, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.ApiKey, error) {
	query :=
		`SELECT ` + keyColumns + ` FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 WHERE k.user_id = $1
		 ORDER BY k.id
		 `

	return r.list(ctx, query, ownerID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.ApiKey, error) {
	query :=
		`SELECT ` + keyColumns + ` FROM api_keys k
		 JOIN users u ON u.id = k.user_id
		 ORDER BY k.id
		 `

	return r.list(ctx, query)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.ApiKey, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var keys []*models.ApiKey
	for rows.Next() {
		key := &models.ApiKey{}
		if err := rows.Scan(&key.ID, &key.Hash, &key.Fingerprint, &key.Description,
			&key.Active, &key.CreatedAt, &key.ExpiresAt, &key.OwnerID, &key.OwnerUsername); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	for _, key := range keys {
		roles, err := r.loadRoles(ctx, key.ID)
		if err != nil {
			return nil, err
		}
		key.Roles = roles
	}

	return keys, nil
}

// Update writes the mutable scalar fields (description, expiry). Role
// changes go through ReplaceRoles, activation through SetActive.
func (r *PostgresRepository) Update(ctx context.Context, key *models.ApiKey) error {
	query :=
		`UPDATE api_keys SET description = $1, expires_at = $2
		 WHERE id = $3
		 `

	if _, err := r.db.ExecContext(ctx, query, key.Description, key.ExpiresAt, key.ID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ReplaceRoles(ctx context.Context, keyID int64, roles []models.Role) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM api_key_roles WHERE api_key_id = $1`, keyID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	for _, role := range roles {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO api_key_roles (api_key_id, role_id) VALUES ($1, $2)`,
			keyID, role.ID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}

	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query :=
		`UPDATE api_keys SET active = $1
		 WHERE id = $2
		 `

	if _, err := r.db.ExecContext(ctx, query, active, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
