package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/quarrydb/quarry/internal/authn"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/quarrydb/quarry/internal/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"
)

// setupTestCatalog opens an in-memory SQLite database with the schema applied.
func setupTestCatalog(t *testing.T) *BunCatalog {
	t.Helper()

	db, err := bunx.NewDB(":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return NewBunCatalog(db)
}

func TestBunCatalogFindUser(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	user, err := cat.FindUser(ctx, "ALICE@LDAP")
	require.NoError(t, err)
	assert.Nil(t, user, "absent user is (nil, nil)")

	created := &models.User{Name: "ALICE@LDAP", PasswordHash: models.ExternalHashSentinel, Temporary: true}
	require.NoError(t, cat.CreateUser(ctx, created))
	assert.NotEmpty(t, created.ID, "ID allocated on create")

	user, err = cat.FindUser(ctx, "ALICE@LDAP")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)
	assert.True(t, user.IsExternal())
}

func TestBunCatalogRoleGrants(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	user := &models.User{Name: "ALICE@LDAP", PasswordHash: models.ExternalHashSentinel}
	require.NoError(t, cat.CreateUser(ctx, user))

	role, err := cat.FindRole(ctx, "@LDAP")
	require.NoError(t, err)
	assert.Nil(t, role, "absent role is (nil, nil)")

	created := &models.Role{Name: "@LDAP", Temporary: true}
	require.NoError(t, cat.CreateRole(ctx, created))

	held, err := cat.HasRole(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, cat.GrantTemporaryRole(ctx, user.ID, created.ID))

	held, err = cat.HasRole(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, held)

	names, err := cat.ListRoleNames(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"@LDAP"}, names)

	require.NoError(t, cat.RevokeTemporaryGrants(ctx, user.ID))
	held, err = cat.HasRole(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.False(t, held)

	// Revoking again with nothing left is a no-op.
	require.NoError(t, cat.RevokeTemporaryGrants(ctx, user.ID))
}

func TestBunCatalogNoteLogin(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	user := &models.User{Name: "ALICE", PasswordHash: "x"}
	require.NoError(t, cat.CreateUser(ctx, user))
	require.Nil(t, user.LastLoginAt)

	require.NoError(t, cat.NoteLogin(ctx, user.ID))

	reloaded, err := cat.FindUser(ctx, "ALICE")
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
}

func TestBunCatalogRunInSystemTxRollsBack(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := cat.RunInSystemTx(ctx, func(ctx context.Context, tx authn.Catalog) error {
		if err := tx.CreateUser(ctx, &models.User{Name: "DOOMED", PasswordHash: "x"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	user, err := cat.FindUser(ctx, "DOOMED")
	require.NoError(t, err)
	assert.Nil(t, user, "failed transaction leaves no partial mutation")
}

func TestBunCatalogRunInSystemTxCommits(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	err := cat.RunInSystemTx(ctx, func(ctx context.Context, tx authn.Catalog) error {
		user := &models.User{Name: "ALICE@LDAP", PasswordHash: models.ExternalHashSentinel}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		role := &models.Role{Name: "@LDAP", Temporary: true}
		if err := tx.CreateRole(ctx, role); err != nil {
			return err
		}
		return tx.GrantTemporaryRole(ctx, user.ID, role.ID)
	})
	require.NoError(t, err)

	user, err := cat.FindUser(ctx, "ALICE@LDAP")
	require.NoError(t, err)
	require.NotNil(t, user)
	names, err := cat.ListRoleNames(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"@LDAP"}, names)
}

func TestBunCatalogNestedSystemTxRejected(t *testing.T) {
	cat := setupTestCatalog(t)
	err := cat.RunInSystemTx(context.Background(), func(ctx context.Context, tx authn.Catalog) error {
		return tx.RunInSystemTx(ctx, func(context.Context, authn.Catalog) error { return nil })
	})
	require.Error(t, err)
}

func TestBunCatalogPurgeTemporary(t *testing.T) {
	cat := setupTestCatalog(t)
	ctx := context.Background()

	permanent := &models.User{Name: "ADMIN", PasswordHash: "x"}
	require.NoError(t, cat.CreateUser(ctx, permanent))
	session := &models.User{Name: "GUEST@LDAP", PasswordHash: models.ExternalHashSentinel, Temporary: true}
	require.NoError(t, cat.CreateUser(ctx, session))
	role := &models.Role{Name: "@LDAP", Temporary: true}
	require.NoError(t, cat.CreateRole(ctx, role))
	require.NoError(t, cat.GrantTemporaryRole(ctx, session.ID, role.ID))

	require.NoError(t, cat.PurgeTemporary(ctx))

	user, err := cat.FindUser(ctx, "GUEST@LDAP")
	require.NoError(t, err)
	assert.Nil(t, user, "temporary user purged")

	kept, err := cat.FindUser(ctx, "ADMIN")
	require.NoError(t, err)
	assert.NotNil(t, kept, "permanent user kept")

	purgedRole, err := cat.FindRole(ctx, "@LDAP")
	require.NoError(t, err)
	assert.Nil(t, purgedRole, "temporary role purged")
}

var _ authn.Catalog = (*BunCatalog)(nil)
