package validators

import "github.com/quarrydb/quarry/internal/authn"

// Register binds every built-in validator to its configuration identifier.
func Register(r *authn.Registry) {
	r.RegisterValidator(FixedPasswordName, func() authn.CredentialsValidator { return &FixedPassword{} })
	r.RegisterValidator(UserListName, func() authn.CredentialsValidator { return &UserList{} })
	r.RegisterValidator(BearerTokenName, func() authn.CredentialsValidator { return &BearerToken{} })
}
