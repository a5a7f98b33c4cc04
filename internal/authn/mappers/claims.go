package mappers

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-bexpr"
	"github.com/quarrydb/quarry/internal/authn"
)

// ClaimRolesName identifies the claim-roles mapper in configuration.
const ClaimRolesName = "claim-roles"

// ClaimRoles grants a role list when a boolean expression over the verified
// token claims matches. The claims are whatever the realm's validator stored
// in the attempt's nested-identity slot (the bearer-token validator stores
// the JWT claims); attempts without claims contribute nothing.
//
// Properties:
//
//	when  = go-bexpr expression over the claims
//	        (e.g. `groups contains "platform-engineers"`)
//	roles = role names separated by comma, granted when the expression
//	        matches
//
// Configure one mapper instance per rule.
type ClaimRoles struct {
	evaluator *bexpr.Evaluator
	roles     []string
}

// Configure compiles the expression. A malformed expression is a
// configuration error, not a per-attempt one.
func (m *ClaimRoles) Configure(props *authn.ConfigProperties) error {
	expr := props.GetString("when", "")
	if expr == "" {
		return fmt.Errorf("when is required")
	}
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return fmt.Errorf("invalid when expression: %w", err)
	}
	var roles []string
	for _, role := range strings.Split(props.GetString("roles", ""), ",") {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return fmt.Errorf("roles is required")
	}
	m.evaluator = evaluator
	m.roles = roles
	return nil
}

// MapUserToRoles evaluates the rule against the attempt's verified claims.
func (m *ClaimRoles) MapUserToRoles(_ context.Context, info *authn.Info) ([]string, error) {
	claims := info.NestedIdentity()
	if claims == nil {
		return nil, nil
	}
	match, err := m.evaluator.Evaluate(claims)
	if err != nil {
		return nil, fmt.Errorf("evaluate claim rule: %w", err)
	}
	if !match {
		return nil, nil
	}
	return m.roles, nil
}
