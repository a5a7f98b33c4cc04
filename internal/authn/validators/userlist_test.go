package validators

import (
	"context"
	"testing"

	"github.com/quarrydb/quarry/internal/authn"
	"golang.org/x/crypto/bcrypt"
)

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return string(hash)
}

func TestUserList(t *testing.T) {
	v := &UserList{}
	err := v.Configure(authn.NewConfigProperties(map[string]string{
		"users": "alice=" + bcryptHash(t, "wonderland") + ", bob=" + bcryptHash(t, "builder"),
	}))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	ctx := context.Background()

	ok, err := v.ValidateCredentials(ctx, authn.NewInfo("alice", "wonderland", "staff"))
	if err != nil || !ok {
		t.Errorf("alice valid: ok=%v err=%v", ok, err)
	}

	// Matching is case-insensitive like the catalog identifier.
	ok, _ = v.ValidateCredentials(ctx, authn.NewInfo("ALICE", "wonderland", "staff"))
	if !ok {
		t.Error("uppercase claimed name should match")
	}

	ok, _ = v.ValidateCredentials(ctx, authn.NewInfo("alice", "builder", "staff"))
	if ok {
		t.Error("another user's password accepted")
	}

	ok, err = v.ValidateCredentials(ctx, authn.NewInfo("ghost", "wonderland", "staff"))
	if err != nil || ok {
		t.Errorf("unknown user: ok=%v err=%v, want clean rejection", ok, err)
	}
}

func TestUserListConfigureErrors(t *testing.T) {
	tests := []struct {
		name  string
		users string
	}{
		{"empty", ""},
		{"missing separator", "alice"},
		{"empty name", "=hash"},
		{"empty hash", "alice="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &UserList{}
			err := v.Configure(authn.NewConfigProperties(map[string]string{"users": tt.users}))
			if err == nil {
				t.Errorf("Configure(users=%q) succeeded, want error", tt.users)
			}
		})
	}
}
