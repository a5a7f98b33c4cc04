package authn

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/quarrydb/quarry/internal/db/models"
)

// Manager is the single entry point for authentication. It selects between
// the always-available internal path and the configured pluggable
// authenticator, and owns the latter's lifecycle: lazy initialization from
// the selector on first use, atomic replacement on reconfiguration.
//
// Construct one per process and inject it into the connection-handling layer;
// there is no package-level instance.
type Manager struct {
	registry           *Registry
	selector           string // authenticator selector vocabulary, see resolve
	configPath         string
	allowInternalUsers bool

	internal *InternalAuthenticator

	mu          sync.Mutex   // guards lazy init and replacement
	initialized bool         // set once the selector has been resolved
	current     atomic.Value // holds authenticatorBox, read lock-free
}

// atomic.Value cannot hold a nil interface, so the installed authenticator is
// boxed; a boxed nil means external authentication is disabled.
type authenticatorBox struct {
	authenticator Authenticator
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Registry resolves validator, mapper and authenticator identifiers.
	Registry *Registry

	// Selector picks the pluggable authenticator: "", "no", "off",
	// "disable", "false" disable it; "yes", "on", "true", "default" select
	// the built-in DefaultAuthenticator; anything else is resolved through
	// the registry.
	Selector string

	// ConfigPath is the explicit authentication configuration location
	// handed to the built-in authenticator. May be empty.
	ConfigPath string

	// AllowInternalUsers enables the internal path for realm-less attempts.
	AllowInternalUsers bool
}

// NewManager creates an authentication manager. The pluggable authenticator
// is not resolved until the first attempt that needs it.
func NewManager(opts ManagerOptions) *Manager {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Manager{
		registry:           registry,
		selector:           opts.Selector,
		configPath:         opts.ConfigPath,
		allowInternalUsers: opts.AllowInternalUsers,
		internal:           NewInternalAuthenticator(),
	}
}

// Authenticate performs credentials validation and role reconciliation for
// one attempt. The attempt's secret material is wiped on every exit path,
// success or failure.
func (m *Manager) Authenticate(ctx context.Context, info *Info, cat Catalog) (user *models.User, err error) {
	defer info.Wipe()

	if info.Realm() == "" && m.allowInternalUsers {
		return m.internal.Authenticate(ctx, info, cat)
	}

	authenticator, err := m.authenticator()
	if err != nil {
		return nil, err
	}
	if authenticator == nil {
		log.Printf("authn: external realm %s requested but no authenticator is configured", info.Realm())
		return nil, ErrAuthenticationFailed
	}
	return authenticator.Authenticate(ctx, info, cat)
}

// SetAuthenticator replaces the active authenticator. The new authenticator
// is initialized before it is installed; on init failure the previous one
// stays active. Passing nil disables external authentication.
func (m *Manager) SetAuthenticator(authenticator Authenticator) error {
	if authenticator != nil {
		if err := authenticator.Init(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current.Store(authenticatorBox{authenticator: authenticator})
	m.initialized = true
	return nil
}

// authenticator returns the installed authenticator, resolving the selector
// on first use. Concurrent first calls initialize exactly once.
func (m *Manager) authenticator() (Authenticator, error) {
	if box, ok := m.current.Load().(authenticatorBox); ok {
		return box.authenticator, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		if box, ok := m.current.Load().(authenticatorBox); ok {
			return box.authenticator, nil
		}
		return nil, nil
	}

	authenticator, err := m.resolve(m.selector)
	if err != nil {
		return nil, err
	}
	if authenticator != nil {
		if err := authenticator.Init(); err != nil {
			return nil, err
		}
	}
	m.current.Store(authenticatorBox{authenticator: authenticator})
	m.initialized = true
	return authenticator, nil
}

// resolve maps the selector vocabulary to an authenticator instance. A nil
// result means external authentication is disabled.
func (m *Manager) resolve(selector string) (Authenticator, error) {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "", "no", "off", "disable", "false":
		return nil, nil
	case "yes", "on", "true", "default":
		return NewDefaultAuthenticator(m.registry, m.configPath), nil
	default:
		return m.registry.NewAuthenticator(selector)
	}
}
