package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quarrydb/quarry/internal/db/models"
	"github.com/uptrace/bun"
)

// BunRoleRepository implements RoleRepository using Bun ORM
type BunRoleRepository struct {
	db bun.IDB
}

// NewBunRoleRepository creates a new Bun-based role repository
func NewBunRoleRepository(db bun.IDB) *BunRoleRepository {
	return &BunRoleRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *BunRoleRepository) WithTx(tx bun.Tx) *BunRoleRepository {
	return &BunRoleRepository{db: tx}
}

// Create inserts a new role into the database
func (r *BunRoleRepository) Create(ctx context.Context, role *models.Role) error {
	_, err := r.db.NewInsert().
		Model(role).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// GetByID retrieves a role by its ID
func (r *BunRoleRepository) GetByID(ctx context.Context, id string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().
		Model(role).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get role by ID: %w", err)
	}
	return role, nil
}

// GetByName retrieves a role by its name
func (r *BunRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role := new(models.Role)
	err := r.db.NewSelect().
		Model(role).
		Where("name = ?", name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("role %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get role by name: %w", err)
	}
	return role, nil
}

// List retrieves all roles
func (r *BunRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := r.db.NewSelect().
		Model(&roles).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// DeleteTemporary removes all roles created on demand by a non-persisting
// configuration
func (r *BunRoleRepository) DeleteTemporary(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*models.Role)(nil)).
		Where("temporary = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete temporary roles: %w", err)
	}
	return nil
}
