package authn

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WellKnownConfigFile is consulted in the working directory when no explicit
// configuration location is given.
const WellKnownConfigFile = "quarry-auth.yaml"

// DefaultRealmName is the realm installed by the built-in default
// configuration.
const DefaultRealmName = "quarry"

// Config is the declarative authentication configuration: the realm list,
// the ordered mapper list and the reconciliation policy flags.
type Config struct {
	// AllowUserRegistration creates database users for externally
	// authenticated identities not yet in the catalog.
	AllowUserRegistration bool `yaml:"allowUserRegistration"`

	// CreateMissingRoles creates roles named by mappers that are absent from
	// the catalog. When unset such roles are silently skipped.
	CreateMissingRoles bool `yaml:"createMissingRoles"`

	// PersistUsers retains auto-registered users across restarts. When unset
	// they are session-scoped.
	PersistUsers bool `yaml:"persistUsers"`

	Realms  []RealmConfig  `yaml:"realms"`
	Mappers []MapperConfig `yaml:"mappers"`
}

// RealmConfig names one authentication realm and the validator serving it.
type RealmConfig struct {
	Name       string            `yaml:"name"`
	Validator  string            `yaml:"validator"`
	Properties map[string]string `yaml:"properties"`
}

// MapperConfig names one user-to-roles mapper.
type MapperConfig struct {
	Mapper     string            `yaml:"mapper"`
	Properties map[string]string `yaml:"properties"`
}

// DefaultConfig is the built-in configuration used when no external one is
// found: a single bearer-token realm plus a mapper assigning a role named
// after the realm. Registration is open, missing roles are skipped.
func DefaultConfig() *Config {
	return &Config{
		AllowUserRegistration: true,
		CreateMissingRoles:    false,
		Realms: []RealmConfig{
			{Name: DefaultRealmName, Validator: "bearer-token"},
		},
		Mappers: []MapperConfig{
			{Mapper: "realm-role"},
		},
	}
}

// ParseConfig decodes a YAML configuration document. Unknown fields are
// rejected. Policy flags left unspecified default to the built-in policy
// (registration open, missing roles skipped, users not persisted).
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{
		AllowUserRegistration: true,
		CreateMissingRoles:    false,
		PersistUsers:          false,
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, NewConfigError("malformed authentication configuration", err)
	}
	for n, realm := range cfg.Realms {
		if realm.Name == "" {
			return nil, configErrorf("realm entry %d: name is required", n)
		}
		if realm.Validator == "" {
			return nil, configErrorf("realm %q: validator is required", realm.Name)
		}
	}
	for n, mapper := range cfg.Mappers {
		if mapper.Mapper == "" {
			return nil, configErrorf("mapper entry %d: mapper is required", n)
		}
	}
	return cfg, nil
}

// LoadConfig discovers and parses the authentication configuration.
// Precedence, first found wins: the explicit path, the well-known file in the
// working directory, the built-in default.
func LoadConfig(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		data, err := os.ReadFile(explicitPath)
		if err != nil {
			return nil, NewConfigError(fmt.Sprintf("read authentication configuration %s", explicitPath), err)
		}
		return ParseConfig(data)
	}
	if data, err := os.ReadFile(WellKnownConfigFile); err == nil {
		return ParseConfig(data)
	}
	return DefaultConfig(), nil
}
