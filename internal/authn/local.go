package authn

import (
	"context"
	"log"

	"github.com/quarrydb/quarry/internal/db/models"
	"golang.org/x/crypto/bcrypt"
)

// InternalAuthenticator is the always-available local path for realm-less
// connections: a bcrypt check against the password hash stored on the catalog
// user. It never registers users and never touches role grants; persistent
// grants are administrator-managed.
type InternalAuthenticator struct{}

// NewInternalAuthenticator creates the internal password authenticator.
func NewInternalAuthenticator() *InternalAuthenticator {
	return &InternalAuthenticator{}
}

// Init is a no-op; the internal path has no configuration.
func (a *InternalAuthenticator) Init() error {
	return nil
}

// Authenticate validates a local user's password against the catalog.
func (a *InternalAuthenticator) Authenticate(ctx context.Context, info *Info, cat Catalog) (*models.User, error) {
	userName := info.FullyQualifiedName()
	user, err := cat.FindUser(ctx, userName)
	if err != nil {
		return nil, infraErrorf("find user: %v", err)
	}
	if user == nil {
		log.Printf("authn: internal user %s not found", userName)
		return nil, ErrAuthenticationFailed
	}
	if user.DisabledAt != nil {
		log.Printf("authn: internal user %s is disabled", userName)
		return nil, ErrAuthenticationFailed
	}
	if user.IsExternal() {
		// Externally provisioned users have no locally checkable password.
		log.Printf("authn: user %s is externally authenticated, internal login refused", userName)
		return nil, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(info.Password())); err != nil {
		log.Printf("authn: invalid password for internal user %s", userName)
		return nil, ErrAuthenticationFailed
	}
	if err := cat.NoteLogin(ctx, user.ID); err != nil {
		log.Printf("authn: record login for %s: %v", userName, err)
	}
	return user, nil
}
