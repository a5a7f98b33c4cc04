package mappers

import (
	"context"
	"reflect"
	"testing"

	"github.com/quarrydb/quarry/internal/authn"
)

func TestRealmRole(t *testing.T) {
	m := &RealmRole{}
	if err := m.Configure(authn.NewConfigProperties(nil)); err != nil {
		t.Fatalf("configure: %v", err)
	}

	roles, err := m.MapUserToRoles(context.Background(), authn.NewInfo("alice", "secret", "ldap"))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !reflect.DeepEqual(roles, []string{"@LDAP"}) {
		t.Errorf("roles = %v, want [@LDAP]", roles)
	}

	roles, err = m.MapUserToRoles(context.Background(), authn.NewInfo("alice", "secret", ""))
	if err != nil || roles != nil {
		t.Errorf("internal path: roles=%v err=%v, want none", roles, err)
	}
}

func TestStaticRoles(t *testing.T) {
	m := &StaticRoles{}
	err := m.Configure(authn.NewConfigProperties(map[string]string{"roles": "readers, writers,, admins "}))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}

	roles, err := m.MapUserToRoles(context.Background(), authn.NewInfo("alice", "secret", "ldap"))
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if !reflect.DeepEqual(roles, []string{"readers", "writers", "admins"}) {
		t.Errorf("roles = %v", roles)
	}
}

func TestStaticRolesEmptyList(t *testing.T) {
	m := &StaticRoles{}
	if err := m.Configure(authn.NewConfigProperties(nil)); err != nil {
		t.Fatalf("configure: %v", err)
	}
	roles, err := m.MapUserToRoles(context.Background(), authn.NewInfo("alice", "secret", "ldap"))
	if err != nil || roles != nil {
		t.Errorf("roles=%v err=%v, want none", roles, err)
	}
}

func TestClaimRoles(t *testing.T) {
	m := &ClaimRoles{}
	err := m.Configure(authn.NewConfigProperties(map[string]string{
		"when":  `department == "platform"`,
		"roles": "operators",
	}))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	ctx := context.Background()

	t.Run("matching claims", func(t *testing.T) {
		info := authn.NewInfo("alice", "secret", "quarry")
		info.SetNestedIdentity(map[string]any{"department": "platform"})
		roles, err := m.MapUserToRoles(ctx, info)
		if err != nil {
			t.Fatalf("map: %v", err)
		}
		if !reflect.DeepEqual(roles, []string{"operators"}) {
			t.Errorf("roles = %v, want [operators]", roles)
		}
	})

	t.Run("non-matching claims", func(t *testing.T) {
		info := authn.NewInfo("alice", "secret", "quarry")
		info.SetNestedIdentity(map[string]any{"department": "sales"})
		roles, err := m.MapUserToRoles(ctx, info)
		if err != nil || roles != nil {
			t.Errorf("roles=%v err=%v, want none", roles, err)
		}
	})

	t.Run("no claims", func(t *testing.T) {
		roles, err := m.MapUserToRoles(ctx, authn.NewInfo("alice", "secret", "quarry"))
		if err != nil || roles != nil {
			t.Errorf("roles=%v err=%v, want none without a nested identity", roles, err)
		}
	})
}

func TestClaimRolesConfigureErrors(t *testing.T) {
	m := &ClaimRoles{}
	if err := m.Configure(authn.NewConfigProperties(map[string]string{"roles": "x"})); err == nil {
		t.Error("missing when expression should fail")
	}
	if err := m.Configure(authn.NewConfigProperties(map[string]string{"when": "((", "roles": "x"})); err == nil {
		t.Error("malformed when expression should fail")
	}
	if err := m.Configure(authn.NewConfigProperties(map[string]string{"when": `a == "b"`})); err == nil {
		t.Error("missing roles should fail")
	}
}

func TestRegisterBindsAllMappers(t *testing.T) {
	registry := authn.NewRegistry()
	Register(registry)
	for _, name := range []string{RealmRoleName, StaticRolesName, ClaimRolesName} {
		if _, err := registry.NewMapper(name); err != nil {
			t.Errorf("NewMapper(%q): %v", name, err)
		}
	}
}
