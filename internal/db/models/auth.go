package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ExternalHashSentinel is stored as the password hash of users provisioned by
// an external realm. It never matches any bcrypt comparison, so such users can
// not log in through the internal path.
const ExternalHashSentinel = "!external"

// User represents a database principal.
// Internal users carry a bcrypt PasswordHash. Users provisioned by an external
// realm carry the ExternalHashSentinel and are identified by their
// fully-qualified name (NAME@REALM, uppercased).
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Name         string     `bun:"name,notnull,unique"`
	PasswordHash string     `bun:"password_hash,notnull"`
	Temporary    bool       `bun:"temporary,notnull,default:false"` // not retained across restarts
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
	DisabledAt   *time.Time `bun:"disabled_at"`
}

// IsExternal reports whether this user was provisioned by an external realm
// and therefore has no locally checkable password.
func (u *User) IsExternal() bool {
	return u.PasswordHash == ExternalHashSentinel
}

// Role defines a grantable role in the catalog.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:r"`

	ID          string    `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull,unique"`
	Description string    `bun:"description"`
	Temporary   bool      `bun:"temporary,notnull,default:false"` // created on demand, not retained across restarts
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// RoleGrant is the edge between a user and a role.
//
// Grants tagged Temporary exist only for the current session cycle: the
// authenticator revokes them all before recomputing role membership, so
// repeated logins never accumulate stale grants. Persistent grants are
// administrator-managed and never touched by authentication.
type RoleGrant struct {
	bun.BaseModel `bun:"table:role_grants,alias:rg"`

	ID        string    `bun:"id,pk,type:uuid"`
	UserID    string    `bun:"user_id,notnull,type:uuid"` // FK to users(id)
	RoleID    string    `bun:"role_id,notnull,type:uuid"` // FK to roles(id)
	Temporary bool      `bun:"temporary,notnull,default:false"`
	GrantedAt time.Time `bun:"granted_at,notnull,default:current_timestamp"`
}
