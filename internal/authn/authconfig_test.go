package authn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
allowUserRegistration: false
createMissingRoles: true
persistUsers: true
realms:
  - name: corp
    validator: bearer-token
    properties:
      secret: topsecret
      issuer: https://sso.example.com
  - name: legacy
    validator: fixed-password
    properties:
      password: bootstrap
mappers:
  - mapper: realm-role
  - mapper: static-roles
    properties:
      roles: readers,writers
`))
	require.NoError(t, err)

	assert.False(t, cfg.AllowUserRegistration)
	assert.True(t, cfg.CreateMissingRoles)
	assert.True(t, cfg.PersistUsers)
	require.Len(t, cfg.Realms, 2)
	assert.Equal(t, "corp", cfg.Realms[0].Name)
	assert.Equal(t, "bearer-token", cfg.Realms[0].Validator)
	assert.Equal(t, "topsecret", cfg.Realms[0].Properties["secret"])
	require.Len(t, cfg.Mappers, 2)
	assert.Equal(t, "readers,writers", cfg.Mappers[1].Properties["roles"])
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
realms:
  - name: corp
    validator: bearer-token
`))
	require.NoError(t, err)

	assert.True(t, cfg.AllowUserRegistration, "registration defaults open")
	assert.False(t, cfg.CreateMissingRoles, "missing roles default skipped")
	assert.False(t, cfg.PersistUsers, "users default session-scoped")
}

func TestParseConfigRejectsUnknownFields(t *testing.T) {
	_, err := ParseConfig([]byte("reams:\n  - name: typo\n"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseConfigRequiresRealmNameAndValidator(t *testing.T) {
	_, err := ParseConfig([]byte("realms:\n  - validator: bearer-token\n"))
	assert.Error(t, err, "realm without a name")

	_, err = ParseConfig([]byte("realms:\n  - name: corp\n"))
	assert.Error(t, err, "realm without a validator")

	_, err = ParseConfig([]byte("mappers:\n  - properties:\n      roles: a\n"))
	assert.Error(t, err, "mapper entry without a mapper name")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Len(t, cfg.Realms, 1)
	assert.Equal(t, DefaultRealmName, cfg.Realms[0].Name)
	assert.Equal(t, "bearer-token", cfg.Realms[0].Validator)
	require.Len(t, cfg.Mappers, 1)
	assert.Equal(t, "realm-role", cfg.Mappers[0].Mapper)
	assert.True(t, cfg.AllowUserRegistration)
	assert.False(t, cfg.CreateMissingRoles)
}

func TestLoadConfigExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "auth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("realms:\n  - name: explicit\n    validator: fixed-password\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Realms, 1)
	assert.Equal(t, "explicit", cfg.Realms[0].Name)
}

func TestLoadConfigExplicitPathMissingIsError(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLoadConfigWellKnownFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, WellKnownConfigFile), []byte("realms:\n  - name: wellknown\n    validator: fixed-password\n"), 0o644))
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Len(t, cfg.Realms, 1)
	assert.Equal(t, "wellknown", cfg.Realms[0].Name)
}

func TestLoadConfigFallsBackToDefault(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Len(t, cfg.Realms, 1)
	assert.Equal(t, DefaultRealmName, cfg.Realms[0].Name)
}
