package authn

import (
	"context"

	"github.com/quarrydb/quarry/internal/db/models"
)

// Authenticator validates an authentication attempt and maps it to a database
// user.
//
// Return values:
//   - (user, nil): authentication successful, roles reconciled and committed
//   - (nil, ErrAuthenticationFailed): credentials rejected (opaque)
//   - (nil, err wrapping ErrInfrastructure): the machinery itself failed
type Authenticator interface {
	// Init prepares the authenticator. The Manager invokes it before
	// installing the authenticator; an error aborts the install.
	Init() error

	// Authenticate performs the full dispatch: validator lookup, credential
	// validation, user resolution and role reconciliation against the catalog.
	Authenticate(ctx context.Context, info *Info, cat Catalog) (*models.User, error)
}

// CredentialsValidator validates a presented credential for one realm.
// Implementations may block on their own I/O (network binds run in parallel
// across attempts); any returned error is treated as invalid credentials by
// the dispatch engine, never propagated raw.
type CredentialsValidator interface {
	// Configure applies the realm's free-form properties. A missing required
	// property is a configuration error.
	Configure(props *ConfigProperties) error

	// ValidateCredentials reports whether the attempt's credential is valid.
	ValidateCredentials(ctx context.Context, info *Info) (bool, error)
}

// UserToRolesMapper derives role names an authenticated identity should hold
// for the session. An empty result contributes nothing; an error is an
// unrecoverable mapping failure and fails the attempt.
type UserToRolesMapper interface {
	Configure(props *ConfigProperties) error
	MapUserToRoles(ctx context.Context, info *Info) ([]string, error)
}

// Catalog is the boundary to the engine's user/role/grant storage. Lookup
// methods return (nil, nil) when the object does not exist.
//
// Mutations performed during authentication must happen inside RunInSystemTx,
// which serializes catalog writers the way the engine serializes DDL and makes
// the whole reconciliation atomic: a failed attempt leaves no partial
// mutation.
type Catalog interface {
	FindUser(ctx context.Context, name string) (*models.User, error)
	FindRole(ctx context.Context, name string) (*models.Role, error)

	CreateUser(ctx context.Context, user *models.User) error
	CreateRole(ctx context.Context, role *models.Role) error

	// HasRole reports whether the user already holds any grant on the role.
	HasRole(ctx context.Context, userID, roleID string) (bool, error)

	// GrantTemporaryRole adds a session-scoped user-role edge.
	GrantTemporaryRole(ctx context.Context, userID, roleID string) error

	// RevokeTemporaryGrants drops all temporary grants held by the user.
	// Idempotent: revoking with none present is a no-op.
	RevokeTemporaryGrants(ctx context.Context, userID string) error

	// ListRoleNames returns the names of all roles the user currently holds.
	ListRoleNames(ctx context.Context, userID string) ([]string, error)

	// NoteLogin records a successful login. Best-effort bookkeeping.
	NoteLogin(ctx context.Context, userID string) error

	// RunInSystemTx runs fn against a transaction-scoped catalog view under
	// the engine's system lock. fn returning an error rolls everything back.
	RunInSystemTx(ctx context.Context, fn func(ctx context.Context, tx Catalog) error) error
}
