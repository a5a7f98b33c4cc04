package authn

import (
	"context"
	"log"
	"strings"
	"sync/atomic"

	"github.com/quarrydb/quarry/internal/db/models"
)

// realmSnapshot is one immutable configuration generation: the realm registry
// and the ordered mapper list plus the reconciliation policy. It is never
// modified after construction; reconfiguration builds a new snapshot and
// atomically swaps the pointer, so in-flight attempts always see one
// consistent generation.
type realmSnapshot struct {
	validators map[string]CredentialsValidator // realm name (uppercase) → validator
	mappers    []UserToRolesMapper

	allowUserRegistration bool
	createMissingRoles    bool
	persistUsers          bool

	version int
}

// DefaultAuthenticator dispatches authentication attempts to per-realm
// credential validators and reconciles the authenticated identity with the
// catalog: user lookup or registration, role mapping, temporary grant
// reconciliation, one transactional commit per attempt.
type DefaultAuthenticator struct {
	registry   *Registry
	configPath string // explicit configuration location, may be empty

	snapshot atomic.Value // holds *realmSnapshot
}

// NewDefaultAuthenticator creates the dispatch engine. configPath may be
// empty; Init then falls back to the well-known file and the built-in
// default configuration.
func NewDefaultAuthenticator(registry *Registry, configPath string) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		registry:   registry,
		configPath: configPath,
	}
}

// Init discovers the configuration and activates it. Part of the
// Authenticator contract; the Manager calls it before installing.
func (a *DefaultAuthenticator) Init() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	return a.Reconfigure(cfg)
}

// Reconfigure builds a new configuration generation and swaps it in
// atomically. On error the previous generation stays active.
func (a *DefaultAuthenticator) Reconfigure(cfg *Config) error {
	validators := make(map[string]CredentialsValidator, len(cfg.Realms))
	for _, realmCfg := range cfg.Realms {
		realmName := strings.ToUpper(realmCfg.Name)
		if _, dup := validators[realmName]; dup {
			return configErrorf("duplicate realm %q", realmCfg.Name)
		}
		validator, err := a.registry.NewValidator(realmCfg.Validator)
		if err != nil {
			return err
		}
		if err := validator.Configure(NewConfigProperties(realmCfg.Properties)); err != nil {
			return NewConfigError("configure validator for realm "+realmCfg.Name, err)
		}
		validators[realmName] = validator
	}

	mappers := make([]UserToRolesMapper, 0, len(cfg.Mappers))
	for _, mapperCfg := range cfg.Mappers {
		mapper, err := a.registry.NewMapper(mapperCfg.Mapper)
		if err != nil {
			return err
		}
		if err := mapper.Configure(NewConfigProperties(mapperCfg.Properties)); err != nil {
			return NewConfigError("configure mapper "+mapperCfg.Mapper, err)
		}
		mappers = append(mappers, mapper)
	}

	prevVersion := 0
	if prev := a.snap(); prev != nil {
		prevVersion = prev.version
	}
	a.snapshot.Store(&realmSnapshot{
		validators:            validators,
		mappers:               mappers,
		allowUserRegistration: cfg.AllowUserRegistration,
		createMissingRoles:    cfg.CreateMissingRoles,
		persistUsers:          cfg.PersistUsers,
		version:               prevVersion + 1,
	})
	return nil
}

func (a *DefaultAuthenticator) snap() *realmSnapshot {
	val := a.snapshot.Load()
	if val == nil {
		return nil
	}
	return val.(*realmSnapshot)
}

// Authenticate runs the full dispatch for one attempt.
//
// Order matters: the realm is resolved first, then the unknown-user check
// runs before the validator is invoked, so attempts for users that can never
// be provisioned do not waste a validator call (which may be a network
// bind). Catalog mutation happens inside one system transaction.
func (a *DefaultAuthenticator) Authenticate(ctx context.Context, info *Info, cat Catalog) (*models.User, error) {
	snap := a.snap()
	if snap == nil {
		return nil, infraErrorf("authenticator not initialized")
	}

	validator, ok := snap.validators[info.Realm()]
	if !ok {
		log.Printf("authn: realm %s not configured", info.Realm())
		return nil, ErrAuthenticationFailed
	}

	userName := info.FullyQualifiedName()
	user, err := cat.FindUser(ctx, userName)
	if err != nil {
		return nil, infraErrorf("find user: %v", err)
	}
	if user == nil && !snap.allowUserRegistration {
		log.Printf("authn: user %s not found and registration is disallowed", userName)
		return nil, ErrAuthenticationFailed
	}
	if user != nil && user.DisabledAt != nil {
		log.Printf("authn: user %s is disabled", userName)
		return nil, ErrAuthenticationFailed
	}

	valid, err := validator.ValidateCredentials(ctx, info)
	if err != nil {
		// A failing validator means invalid credentials, never an internal
		// error surfaced to the caller.
		log.Printf("authn: validator for realm %s failed for %s: %v", info.Realm(), userName, err)
		return nil, ErrAuthenticationFailed
	}
	if !valid {
		log.Printf("authn: invalid credentials for %s", userName)
		return nil, ErrAuthenticationFailed
	}

	roleNames, err := a.mapRoles(ctx, snap, info)
	if err != nil {
		log.Printf("authn: role mapping failed for %s: %v", userName, err)
		return nil, ErrAuthenticationFailed
	}

	err = cat.RunInSystemTx(ctx, func(ctx context.Context, tx Catalog) error {
		if user == nil {
			// Re-check under the system lock so two concurrent first logins
			// of the same identity do not race to create the user.
			user, err = tx.FindUser(ctx, userName)
			if err != nil {
				return err
			}
		}
		if user == nil {
			user = buildUser(userName, snap.persistUsers)
			if err := tx.CreateUser(ctx, user); err != nil {
				return err
			}
		}
		if err := tx.RevokeTemporaryGrants(ctx, user.ID); err != nil {
			return err
		}
		return a.reconcileRoles(ctx, snap, tx, user, roleNames)
	})
	if err != nil {
		return nil, infraErrorf("reconcile %s: %v", userName, err)
	}

	if err := cat.NoteLogin(ctx, user.ID); err != nil {
		log.Printf("authn: record login for %s: %v", userName, err)
	}
	return user, nil
}

// mapRoles runs every configured mapper and unions the resulting role names.
// Empty results contribute nothing; empty individual names are skipped.
func (a *DefaultAuthenticator) mapRoles(ctx context.Context, snap *realmSnapshot, info *Info) ([]string, error) {
	seen := make(map[string]struct{})
	var roleNames []string
	for _, mapper := range snap.mappers {
		names, err := mapper.MapUserToRoles(ctx, info)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			roleNames = append(roleNames, name)
		}
	}
	return roleNames, nil
}

// reconcileRoles resolves each mapped role name against the catalog and
// grants a temporary edge for every resolved role the user does not already
// hold. Missing roles are created when the configuration says so, otherwise
// silently skipped.
func (a *DefaultAuthenticator) reconcileRoles(ctx context.Context, snap *realmSnapshot, tx Catalog, user *models.User, roleNames []string) error {
	for _, roleName := range roleNames {
		role, err := tx.FindRole(ctx, roleName)
		if err != nil {
			return err
		}
		if role == nil {
			if !snap.createMissingRoles {
				continue
			}
			role = &models.Role{
				Name:      roleName,
				Temporary: !snap.persistUsers,
			}
			if err := tx.CreateRole(ctx, role); err != nil {
				return err
			}
		}
		held, err := tx.HasRole(ctx, user.ID, role.ID)
		if err != nil {
			return err
		}
		if held {
			continue
		}
		if err := tx.GrantTemporaryRole(ctx, user.ID, role.ID); err != nil {
			return err
		}
	}
	return nil
}

// buildUser creates the database user record for an externally authenticated
// identity: empty role set, the sentinel hash marking "not locally
// checkable", session-scoped unless users are persisted.
func buildUser(fullyQualifiedName string, persistent bool) *models.User {
	return &models.User{
		Name:         fullyQualifiedName,
		PasswordHash: models.ExternalHashSentinel,
		Temporary:    !persistent,
	}
}
