package authn

import (
	"strings"
	"sync"
)

// Info carries one authentication attempt: the claimed identity, the realm it
// claims it against, and the secret material presented. It is owned by the
// calling connection handler for the lifetime of the attempt.
//
// Secret material must be irrecoverable once the attempt returns. The Manager
// guarantees Wipe runs on every exit path; Wipe itself is idempotent.
type Info struct {
	userName string
	realm    string // canonicalized to uppercase, "" selects the internal path
	password []byte

	// nestedIdentity is an out-of-band slot a validator may populate for
	// downstream consumers, e.g. verified token claims for a roles mapper.
	nestedIdentity any

	wipeOnce sync.Once
}

// NewInfo builds the context for one authentication attempt.
// The realm is case-normalized; an empty realm selects the internal path.
func NewInfo(userName, password, realm string) *Info {
	return &Info{
		userName: userName,
		realm:    strings.ToUpper(realm),
		password: []byte(password),
	}
}

// UserName returns the claimed identity as presented.
func (i *Info) UserName() string {
	return i.userName
}

// Realm returns the canonicalized realm name, or "" for the internal path.
func (i *Info) Realm() string {
	return i.realm
}

// Password returns the presented secret. Invalid after Wipe.
func (i *Info) Password() string {
	return string(i.password)
}

// FullyQualifiedName returns the canonical database user identifier:
// USERNAME@REALM uppercased, or just USERNAME for the internal path.
func (i *Info) FullyQualifiedName() string {
	if i.realm == "" {
		return strings.ToUpper(i.userName)
	}
	return strings.ToUpper(i.userName) + "@" + i.realm
}

// SetNestedIdentity stores an identity token produced by a delegating
// validator (e.g. verified claims) for downstream consumers.
func (i *Info) SetNestedIdentity(identity any) {
	i.nestedIdentity = identity
}

// NestedIdentity returns the value stored by SetNestedIdentity, or nil.
func (i *Info) NestedIdentity() any {
	return i.nestedIdentity
}

// Wipe destroys the secret material. It runs at most once; later calls are
// no-ops.
func (i *Info) Wipe() {
	i.wipeOnce.Do(func() {
		for n := range i.password {
			i.password[n] = 0
		}
		i.password = nil
	})
}
