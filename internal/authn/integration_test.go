package authn_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/quarrydb/quarry/internal/authn"
	"github.com/quarrydb/quarry/internal/authn/mappers"
	"github.com/quarrydb/quarry/internal/authn/validators"
	"github.com/quarrydb/quarry/internal/catalog"
	"github.com/quarrydb/quarry/internal/db/bunx"
	"github.com/quarrydb/quarry/internal/migrations"
	"github.com/uptrace/bun/migrate"
)

// TestMockRealmEndToEnd runs the full stack against a real catalog: a MOCK
// realm with a fixed-password validator, a mapper assigning the realm role,
// repeated logins of alice.
func TestMockRealmEndToEnd(t *testing.T) {
	db, err := bunx.NewDB(":memory:", 1)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cat := catalog.NewBunCatalog(db)

	registry := authn.NewRegistry()
	validators.Register(registry)
	mappers.Register(registry)

	cfg, err := authn.ParseConfig([]byte(`
createMissingRoles: true
realms:
  - name: mock
    validator: fixed-password
    properties:
      password: mock
mappers:
  - mapper: realm-role
`))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	authenticator := authn.NewDefaultAuthenticator(registry, "")
	if err := authenticator.Reconfigure(cfg); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}
	manager := authn.NewManager(authn.ManagerOptions{Registry: registry})
	if err := manager.SetAuthenticator(authenticator); err != nil {
		t.Fatalf("set authenticator: %v", err)
	}

	user, err := manager.Authenticate(ctx, authn.NewInfo("alice", "mock", "mock"), cat)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Name != "ALICE@MOCK" {
		t.Errorf("principal = %q, want ALICE@MOCK", user.Name)
	}

	roles, err := cat.ListRoleNames(ctx, user.ID)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if !reflect.DeepEqual(roles, []string{"@MOCK"}) {
		t.Errorf("roles = %v, want [@MOCK]", roles)
	}

	_, err = manager.Authenticate(ctx, authn.NewInfo("alice", "wrong", "mock"), cat)
	if !errors.Is(err, authn.ErrAuthenticationFailed) {
		t.Errorf("wrong password: err = %v, want ErrAuthenticationFailed", err)
	}

	// A second valid login lands on the same user with the same role set.
	again, err := manager.Authenticate(ctx, authn.NewInfo("alice", "mock", "mock"), cat)
	if err != nil {
		t.Fatalf("second authenticate: %v", err)
	}
	if again.ID != user.ID {
		t.Errorf("second login user = %q, want %q", again.ID, user.ID)
	}
	roles, err = cat.ListRoleNames(ctx, again.ID)
	if err != nil {
		t.Fatalf("list roles after second login: %v", err)
	}
	if !reflect.DeepEqual(roles, []string{"@MOCK"}) {
		t.Errorf("roles after second login = %v, want [@MOCK]", roles)
	}
}
