package mappers

import "github.com/quarrydb/quarry/internal/authn"

// Register binds every built-in mapper to its configuration identifier.
func Register(r *authn.Registry) {
	r.RegisterMapper(RealmRoleName, func() authn.UserToRolesMapper { return &RealmRole{} })
	r.RegisterMapper(StaticRolesName, func() authn.UserToRolesMapper { return &StaticRoles{} })
	r.RegisterMapper(ClaimRolesName, func() authn.UserToRolesMapper { return &ClaimRoles{} })
}
