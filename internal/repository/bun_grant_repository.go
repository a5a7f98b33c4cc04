package repository

import (
	"context"
	"fmt"

	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/uptrace/bun"
)

// BunGrantRepository implements GrantRepository using Bun ORM
type BunGrantRepository struct {
	db bun.IDB
}

// NewBunGrantRepository creates a new Bun-based grant repository
func NewBunGrantRepository(db bun.IDB) *BunGrantRepository {
	return &BunGrantRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *BunGrantRepository) WithTx(tx bun.Tx) *BunGrantRepository {
	return &BunGrantRepository{db: tx}
}

// Create inserts a new role grant
func (r *BunGrantRepository) Create(ctx context.Context, grant *models.RoleGrant) error {
	_, err := r.db.NewInsert().
		Model(grant).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

// ListByUser retrieves all grants held by a user
func (r *BunGrantRepository) ListByUser(ctx context.Context, userID string) ([]models.RoleGrant, error) {
	var grants []models.RoleGrant
	err := r.db.NewSelect().
		Model(&grants).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	return grants, nil
}

// Exists reports whether the user already holds a grant on the role,
// temporary or persistent.
func (r *BunGrantRepository) Exists(ctx context.Context, userID, roleID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.RoleGrant)(nil)).
		Where("user_id = ?", userID).
		Where("role_id = ?", roleID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("grant exists: %w", err)
	}
	return exists, nil
}

// RevokeTemporaryByUser deletes all temporary grants held by a user.
// Deleting zero rows is not an error.
func (r *BunGrantRepository) RevokeTemporaryByUser(ctx context.Context, userID string) error {
	_, err := r.db.NewDelete().
		Model((*models.RoleGrant)(nil)).
		Where("user_id = ?", userID).
		Where("temporary = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("revoke temporary grants: %w", err)
	}
	return nil
}

// DeleteTemporary removes all temporary grants
func (r *BunGrantRepository) DeleteTemporary(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*models.RoleGrant)(nil)).
		Where("temporary = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete temporary grants: %w", err)
	}
	return nil
}
