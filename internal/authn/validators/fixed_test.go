package validators

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/quarrydb/quarry/internal/authn"
)

func TestFixedPasswordLiteral(t *testing.T) {
	v := &FixedPassword{}
	err := v.Configure(authn.NewConfigProperties(map[string]string{"password": "bootstrap"}))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}

	ok, err := v.ValidateCredentials(context.Background(), authn.NewInfo("alice", "bootstrap", "fixed"))
	if err != nil || !ok {
		t.Errorf("valid password: ok=%v err=%v", ok, err)
	}
	ok, err = v.ValidateCredentials(context.Background(), authn.NewInfo("alice", "wrong", "fixed"))
	if err != nil || ok {
		t.Errorf("invalid password: ok=%v err=%v", ok, err)
	}
}

func TestFixedPasswordDigestMode(t *testing.T) {
	salt := []byte("0123456789abcdef")
	digest := sha256.Sum256(append([]byte("bootstrap"), salt...))

	v := &FixedPassword{}
	err := v.Configure(authn.NewConfigProperties(map[string]string{
		"salt": hex.EncodeToString(salt),
		"hash": hex.EncodeToString(digest[:]),
	}))
	if err != nil {
		t.Fatalf("configure: %v", err)
	}

	ok, err := v.ValidateCredentials(context.Background(), authn.NewInfo("alice", "bootstrap", "fixed"))
	if err != nil || !ok {
		t.Errorf("valid password against digest: ok=%v err=%v", ok, err)
	}
	ok, _ = v.ValidateCredentials(context.Background(), authn.NewInfo("alice", "wrong", "fixed"))
	if ok {
		t.Error("invalid password accepted in digest mode")
	}
}

func TestFixedPasswordRequiresConfiguration(t *testing.T) {
	v := &FixedPassword{}
	if err := v.Configure(authn.NewConfigProperties(nil)); err == nil {
		t.Error("expected error when neither password nor hash is set")
	}

	if err := v.Configure(authn.NewConfigProperties(map[string]string{"salt": "zz"})); err == nil {
		t.Error("expected error for non-hex salt")
	}
}

func TestNewFixedPassword(t *testing.T) {
	v := NewFixedPassword("bootstrap")

	ok, err := v.ValidateCredentials(context.Background(), authn.NewInfo("alice", "bootstrap", "fixed"))
	if err != nil || !ok {
		t.Errorf("constructor-built validator rejects its own password: ok=%v err=%v", ok, err)
	}
	if v.password != "" {
		t.Error("constructor must not retain the literal password")
	}
}
