// Package repomanager hands out repositories bound to a querier (plain
// connection or transaction) and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/prestobr/authd/internal/dbx"
	"github.com/prestobr/authd/internal/server/repositories/apikeys"
	"github.com/prestobr/authd/internal/server/repositories/roles"
	"github.com/prestobr/authd/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	ApiKeys(db dbx.DBTX) apikeys.Repository
}
