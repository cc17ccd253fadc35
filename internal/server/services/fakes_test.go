package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/dbx"
	"github.com/prestobr/authd/internal/server/models"
	apikeysrepo "github.com/prestobr/authd/internal/server/repositories/apikeys"
	rolesrepo "github.com/prestobr/authd/internal/server/repositories/roles"
	usersrepo "github.com/prestobr/authd/internal/server/repositories/users"
)

// newSQLMockDB returns a mock *sql.DB for the services' WithTx calls. The
// fakes below ignore the querier, so only Begin/Commit/Rollback matter.
func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byUsername map[string]*models.User
	byID       map[int64]*models.User

	usernameTaken bool
	emailTaken    bool
	existsErr     error

	createErr error
	created   *models.User

	replacedUserID int64
	replacedRoles  []models.Role
	replaceErr     error

	listOut []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = 1
	f.created = u
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return f.usernameTaken, f.existsErr
}

func (f *fakeUsersRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return f.emailTaken, f.existsErr
}

func (f *fakeUsersRepo) ReplaceRoles(ctx context.Context, userID int64, roles []models.Role) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replacedUserID = userID
	f.replacedRoles = roles
	return nil
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	return f.listOut, nil
}

type fakeRolesRepo struct {
	byName map[string]*models.Role
}

func (f *fakeRolesRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	if r, ok := f.byName[name]; ok {
		return r, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeRolesRepo) List(ctx context.Context) ([]*models.Role, error) {
	out := make([]*models.Role, 0, len(f.byName))
	for _, r := range f.byName {
		out = append(out, r)
	}
	return out, nil
}

type fakeApiKeysRepo struct {
	byID          map[int64]*models.ApiKey
	byFingerprint map[string]*models.ApiKey

	createErr error
	created   *models.ApiKey

	lockedIDs []int64

	listOut    []*models.ApiKey
	listAllOut []*models.ApiKey

	updated       *models.ApiKey
	replacedKeyID int64
	replacedRoles []models.Role

	setActiveID    int64
	setActiveValue bool
	setActiveCalls int
}

func (f *fakeApiKeysRepo) Create(ctx context.Context, key *models.ApiKey) (*models.ApiKey, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	key.ID = 5
	f.created = key
	return key, nil
}

func (f *fakeApiKeysRepo) GetByID(ctx context.Context, id int64) (*models.ApiKey, error) {
	if k, ok := f.byID[id]; ok {
		return k, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeApiKeysRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.ApiKey, error) {
	f.lockedIDs = append(f.lockedIDs, id)
	return f.GetByID(ctx, id)
}

func (f *fakeApiKeysRepo) GetByFingerprint(ctx context.Context, fingerprint string) (*models.ApiKey, error) {
	if k, ok := f.byFingerprint[fingerprint]; ok {
		return k, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeApiKeysRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.ApiKey, error) {
	return f.listOut, nil
}

func (f *fakeApiKeysRepo) ListAll(ctx context.Context) ([]*models.ApiKey, error) {
	return f.listAllOut, nil
}

func (f *fakeApiKeysRepo) Update(ctx context.Context, key *models.ApiKey) error {
	f.updated = key
	return nil
}

func (f *fakeApiKeysRepo) ReplaceRoles(ctx context.Context, keyID int64, roles []models.Role) error {
	f.replacedKeyID = keyID
	f.replacedRoles = roles
	return nil
}

func (f *fakeApiKeysRepo) SetActive(ctx context.Context, id int64, active bool) error {
	f.setActiveID = id
	f.setActiveValue = active
	f.setActiveCalls++
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRolesRepo
	k *fakeApiKeysRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Roles(db dbx.DBTX) rolesrepo.Repository         { return m.r }
func (m *fakeRepoManager) ApiKeys(db dbx.DBTX) apikeysrepo.Repository     { return m.k }
