// Package mappers provides the built-in user-to-roles mappers. Each one
// registers under a stable identifier so declarative configuration can name
// it without runtime type loading.
package mappers

import (
	"context"

	"github.com/quarrydb/quarry/internal/authn"
)

// RealmRoleName identifies the realm-role mapper in configuration.
const RealmRoleName = "realm-role"

// RealmRole assigns every externally authenticated user one role named after
// its realm, "@" + the uppercased realm name. Granting that role to local
// objects is how administrators give an entire realm access.
type RealmRole struct{}

// Configure is a no-op; the mapper has no properties.
func (m *RealmRole) Configure(*authn.ConfigProperties) error {
	return nil
}

// MapUserToRoles returns the realm role for the attempt.
func (m *RealmRole) MapUserToRoles(_ context.Context, info *authn.Info) ([]string, error) {
	if info.Realm() == "" {
		return nil, nil
	}
	return []string{"@" + info.Realm()}, nil
}
