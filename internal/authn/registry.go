package authn

import (
	"sync"
)

// Registry maps string identifiers to validator, mapper and authenticator
// factories. Configuration resolves implementation names through it instead
// of runtime type loading; an unknown identifier is a configuration error.
//
// Populate it at startup (built-in packages register themselves via their
// Register functions), then hand it to the Manager. Registration after
// startup is permitted and safe for concurrent use.
type Registry struct {
	mu             sync.RWMutex
	validators     map[string]func() CredentialsValidator
	mappers        map[string]func() UserToRolesMapper
	authenticators map[string]func() Authenticator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators:     map[string]func() CredentialsValidator{},
		mappers:        map[string]func() UserToRolesMapper{},
		authenticators: map[string]func() Authenticator{},
	}
}

// RegisterValidator binds a credentials validator factory to an identifier.
func (r *Registry) RegisterValidator(name string, factory func() CredentialsValidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = factory
}

// RegisterMapper binds a user-to-roles mapper factory to an identifier.
func (r *Registry) RegisterMapper(name string, factory func() UserToRolesMapper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappers[name] = factory
}

// RegisterAuthenticator binds a full authenticator factory to an identifier,
// resolvable through the manager's authenticator selector.
func (r *Registry) RegisterAuthenticator(name string, factory func() Authenticator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authenticators[name] = factory
}

// NewValidator instantiates the validator registered under name.
func (r *Registry) NewValidator(name string) (CredentialsValidator, error) {
	r.mu.RLock()
	factory, ok := r.validators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, configErrorf("unknown credentials validator %q", name)
	}
	return factory(), nil
}

// NewMapper instantiates the mapper registered under name.
func (r *Registry) NewMapper(name string) (UserToRolesMapper, error) {
	r.mu.RLock()
	factory, ok := r.mappers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, configErrorf("unknown user-to-roles mapper %q", name)
	}
	return factory(), nil
}

// NewAuthenticator instantiates the authenticator registered under name.
func (r *Registry) NewAuthenticator(name string) (Authenticator, error) {
	r.mu.RLock()
	factory, ok := r.authenticators[name]
	r.mu.RUnlock()
	if !ok {
		return nil, configErrorf("unknown authenticator %q", name)
	}
	return factory(), nil
}
