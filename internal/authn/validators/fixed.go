// Package validators provides the built-in credential validators. Each one
// registers under a stable identifier so declarative configuration can name
// it without runtime type loading.
package validators

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/quarrydb/quarry/internal/authn"
)

// FixedPasswordName identifies the fixed-password validator in configuration.
const FixedPasswordName = "fixed-password"

// FixedPassword matches the presented password against one configured value,
// either literally or as a salted SHA-256 digest. Usage should be limited to
// tests and bootstrap setups.
//
// Properties:
//
//	password = the expected password, compared in constant time
//	salt     = hex salt for digest mode
//	hash     = hex SHA-256 digest of password+salt; replaces the literal mode
type FixedPassword struct {
	password     string
	salt         []byte
	hashWithSalt []byte
}

// NewFixedPassword creates a validator accepting the given password, stored
// as a salted digest rather than the literal value.
func NewFixedPassword(password string) *FixedPassword {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	return &FixedPassword{
		salt:         salt,
		hashWithSalt: hashWithSalt([]byte(password), salt),
	}
}

// Configure applies the realm properties.
func (v *FixedPassword) Configure(props *authn.ConfigProperties) error {
	v.password = props.GetString("password", v.password)
	if saltHex := props.GetString("salt", ""); saltHex != "" {
		salt, err := hex.DecodeString(saltHex)
		if err != nil {
			return fmt.Errorf("invalid salt: %w", err)
		}
		v.salt = salt
	}
	if hashHex := props.GetString("hash", ""); hashHex != "" {
		digest, err := hex.DecodeString(hashHex)
		if err != nil {
			return fmt.Errorf("invalid hash: %w", err)
		}
		v.hashWithSalt = digest
	}
	if v.password == "" && v.hashWithSalt == nil {
		return fmt.Errorf("either password or hash is required")
	}
	return nil
}

// ValidateCredentials compares the presented password in constant time.
func (v *FixedPassword) ValidateCredentials(_ context.Context, info *authn.Info) (bool, error) {
	if v.hashWithSalt != nil {
		presented := hashWithSalt([]byte(info.Password()), v.salt)
		return subtle.ConstantTimeCompare(v.hashWithSalt, presented) == 1, nil
	}
	return subtle.ConstantTimeCompare([]byte(v.password), []byte(info.Password())) == 1, nil
}

func hashWithSalt(password, salt []byte) []byte {
	digest := sha256.Sum256(append(append([]byte{}, password...), salt...))
	return digest[:]
}
