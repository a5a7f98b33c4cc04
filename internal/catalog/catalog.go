// Package catalog implements the authentication boundary to the engine's
// user/role/grant storage on top of the Bun repositories.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quarrydb/quarry/internal/authn"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/quarrydb/quarry/internal/repository"
	"github.com/uptrace/bun"
)

// BunCatalog implements authn.Catalog against a Bun database handle.
//
// Catalog mutations during authentication run inside RunInSystemTx: one
// process-wide mutex plus one database transaction, matching the engine's
// single-writer convention for catalog DDL. Reads outside the transaction
// never contend on the lock.
type BunCatalog struct {
	db    *bun.DB // nil on transaction-scoped views
	sysMu *sync.Mutex

	users  *repository.BunUserRepository
	roles  *repository.BunRoleRepository
	grants *repository.BunGrantRepository
}

// NewBunCatalog creates the catalog facade over a database handle.
func NewBunCatalog(db *bun.DB) *BunCatalog {
	return &BunCatalog{
		db:     db,
		sysMu:  &sync.Mutex{},
		users:  repository.NewBunUserRepository(db),
		roles:  repository.NewBunRoleRepository(db),
		grants: repository.NewBunGrantRepository(db),
	}
}

// withTx returns a view of the catalog bound to the given transaction.
func (c *BunCatalog) withTx(tx bun.Tx) *BunCatalog {
	return &BunCatalog{
		sysMu:  c.sysMu,
		users:  c.users.WithTx(tx),
		roles:  c.roles.WithTx(tx),
		grants: c.grants.WithTx(tx),
	}
}

// FindUser looks a user up by fully-qualified name. Absent users are
// (nil, nil), not an error.
func (c *BunCatalog) FindUser(ctx context.Context, name string) (*models.User, error) {
	user, err := c.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// FindRole looks a role up by name. Absent roles are (nil, nil).
func (c *BunCatalog) FindRole(ctx context.Context, name string) (*models.Role, error) {
	role, err := c.roles.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// CreateUser inserts a user, allocating its ID when unset.
func (c *BunCatalog) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = bunx.NewUUIDv7()
	}
	return c.users.Create(ctx, user)
}

// CreateRole inserts a role, allocating its ID when unset.
func (c *BunCatalog) CreateRole(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = bunx.NewUUIDv7()
	}
	return c.roles.Create(ctx, role)
}

// HasRole reports whether the user holds any grant on the role.
func (c *BunCatalog) HasRole(ctx context.Context, userID, roleID string) (bool, error) {
	return c.grants.Exists(ctx, userID, roleID)
}

// GrantTemporaryRole adds a session-scoped user-role edge.
func (c *BunCatalog) GrantTemporaryRole(ctx context.Context, userID, roleID string) error {
	return c.grants.Create(ctx, &models.RoleGrant{
		ID:        bunx.NewUUIDv7(),
		UserID:    userID,
		RoleID:    roleID,
		Temporary: true,
	})
}

// RevokeTemporaryGrants drops all temporary grants held by the user.
func (c *BunCatalog) RevokeTemporaryGrants(ctx context.Context, userID string) error {
	return c.grants.RevokeTemporaryByUser(ctx, userID)
}

// ListRoleNames returns the names of all roles the user currently holds.
func (c *BunCatalog) ListRoleNames(ctx context.Context, userID string) ([]string, error) {
	grants, err := c.grants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(grants))
	for _, grant := range grants {
		role, err := c.roles.GetByID(ctx, grant.RoleID)
		if err != nil {
			return nil, err
		}
		names = append(names, role.Name)
	}
	return names, nil
}

// NoteLogin records a successful login on the user.
func (c *BunCatalog) NoteLogin(ctx context.Context, userID string) error {
	return c.users.UpdateLastLogin(ctx, userID)
}

// RunInSystemTx runs fn against a transaction-scoped catalog view under the
// system lock. fn returning an error rolls the transaction back.
func (c *BunCatalog) RunInSystemTx(ctx context.Context, fn func(ctx context.Context, tx authn.Catalog) error) error {
	if c.db == nil {
		return fmt.Errorf("nested system transaction")
	}
	c.sysMu.Lock()
	defer c.sysMu.Unlock()
	return c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, c.withTx(tx))
	})
}

// PurgeTemporary removes session-scoped users, roles and grants. Run at
// startup: temporary objects by definition do not survive the process.
func (c *BunCatalog) PurgeTemporary(ctx context.Context) error {
	return c.RunInSystemTx(ctx, func(ctx context.Context, tx authn.Catalog) error {
		view := tx.(*BunCatalog)
		if err := view.grants.DeleteTemporary(ctx); err != nil {
			return err
		}
		if err := view.users.DeleteTemporary(ctx); err != nil {
			return err
		}
		return view.roles.DeleteTemporary(ctx)
	})
}
