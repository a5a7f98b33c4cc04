package repository

import (
	"context"
	"errors"

	"github.com/quarrydb/quarry/internal/db/models"
)

// ErrNotFound is returned when a catalog object does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository exposes persistence operations for database users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	SetPasswordHash(ctx context.Context, id string, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string) error
	Disable(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.User, error)

	// DeleteTemporary removes session-scoped users. Run at startup: temporary
	// users by definition do not survive the process.
	DeleteTemporary(ctx context.Context) error
}

// RoleRepository exposes persistence operations for roles.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
	DeleteTemporary(ctx context.Context) error
}

// GrantRepository exposes persistence operations for user-role grants.
type GrantRepository interface {
	Create(ctx context.Context, grant *models.RoleGrant) error
	ListByUser(ctx context.Context, userID string) ([]models.RoleGrant, error)
	Exists(ctx context.Context, userID, roleID string) (bool, error)

	// RevokeTemporaryByUser deletes all temporary grants held by a user.
	// Revoking when none are present is a no-op.
	RevokeTemporaryByUser(ctx context.Context, userID string) error

	DeleteTemporary(ctx context.Context) error
}
