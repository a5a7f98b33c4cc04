package mappers

import (
	"context"
	"strings"

	"github.com/quarrydb/quarry/internal/authn"
)

// StaticRolesName identifies the static-roles mapper in configuration.
const StaticRolesName = "static-roles"

// StaticRoles assigns a fixed role list to every authenticated user.
//
// Properties:
//
//	roles = role names separated by comma
type StaticRoles struct {
	roles []string
}

// Configure parses the role list.
func (m *StaticRoles) Configure(props *authn.ConfigProperties) error {
	var roles []string
	for _, role := range strings.Split(props.GetString("roles", ""), ",") {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	m.roles = roles
	return nil
}

// MapUserToRoles returns the configured roles.
func (m *StaticRoles) MapUserToRoles(context.Context, *authn.Info) ([]string, error) {
	return m.roles, nil
}
