package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/internal/authn"
	"golang.org/x/crypto/bcrypt"
)

// UserListName identifies the user-list validator in configuration.
const UserListName = "user-list"

// UserList validates against a fixed table of users with bcrypt password
// hashes, a local password realm held entirely in configuration.
//
// Properties:
//
//	users = comma-separated name=bcrypt-hash pairs
//	        (e.g. "alice=$2a$10$...,bob=$2a$10$...")
//
// User names are matched case-insensitively, consistent with the
// case-normalized fully-qualified name.
type UserList struct {
	hashes map[string]string // uppercased user name → bcrypt hash
}

// Configure parses the user table.
func (v *UserList) Configure(props *authn.ConfigProperties) error {
	raw := props.GetString("users", "")
	if raw == "" {
		return fmt.Errorf("users is required")
	}
	hashes := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, hash, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || hash == "" {
			return fmt.Errorf("invalid users entry %q, want name=hash", pair)
		}
		hashes[strings.ToUpper(name)] = hash
	}
	v.hashes = hashes
	return nil
}

// ValidateCredentials runs the bcrypt comparison for the claimed user.
func (v *UserList) ValidateCredentials(_ context.Context, info *authn.Info) (bool, error) {
	hash, ok := v.hashes[strings.ToUpper(info.UserName())]
	if !ok {
		// Burn a comparison anyway so unknown users cost the same as bad
		// passwords.
		_ = bcrypt.CompareHashAndPassword(unknownUserHash, []byte(info.Password()))
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(info.Password())) == nil, nil
}

// bcrypt hash of an unguessable throwaway value, used to equalize timing for
// unknown users.
var unknownUserHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("quarry-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
}()
