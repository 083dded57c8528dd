// Package lookup resolves the claims asserted by an identity provider to a
// local account, provisioning one on first login when the provider
// configuration allows it.
package lookup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect/claims"
	"github.com/nimbushare/openidconnect/config"
)

const passwordLength = 20

// Result is the outcome of a successful resolution. The resolved user is
// the primary outcome; WelcomeMailError records the auxiliary outcome of
// the welcome notification, which never fails the resolution itself.
type Result struct {
	User             User
	Provisioned      bool
	WelcomeMailError error
}

// Deps are the collaborators of a Manager. Config, Users and Logger are
// required. Validator and Random are required once import is enabled.
// Welcome may be nil to disable the welcome notification, PasswordSource
// may be nil to always generate passwords.
type Deps struct {
	Config         ConfigSource
	Users          UserStore
	Validator      MailValidator
	Random         RandomGenerator
	Welcome        *WelcomeMailer
	PasswordSource PasswordSource
	Logger         *zap.Logger
}

// Manager maps provider claims to local accounts.
type Manager struct {
	deps Deps
	log  *zap.Logger
}

func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps, log: deps.Logger}
}

// Resolve maps the claim set to a local account. It returns a *LoginError
// for login failures, a *ConfigError for provider misconfiguration, and the
// store's error unwrapped for infrastructure faults.
func (m *Manager) Resolve(ctx context.Context, cs claims.Set) (*Result, error) {
	cfg := m.deps.Config.LookupConfig()
	if cfg == nil {
		return nil, &ConfigError{Hint: "configuration issue in openidconnect app"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Hint: "invalid lookup configuration", Cause: err}
	}

	attr := cfg.Attribute()
	key, err := cs.Get(attr)
	if err != nil {
		// The provider did not assert the configured attribute at all.
		// That is a schema mismatch the operator has to fix, not a
		// failed login of one particular user.
		return nil, &ConfigError{
			Hint:  fmt.Sprintf("provider claims carry no %q attribute", attr),
			Cause: err,
		}
	}

	var user User
	if cfg.ByEmail() {
		matches, err := m.deps.Users.GetByEmail(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("lookup by email: %w", err)
		}
		if len(matches) > 1 {
			m.log.Warn("email claim matches multiple accounts",
				zap.String("email", key), zap.Int("matches", len(matches)))
			return nil, ambiguousAccount(key)
		}
		if len(matches) == 1 {
			user = matches[0]
		}
	} else {
		user, err = m.deps.Users.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("lookup by id: %w", err)
		}
	}

	if user != nil {
		return &Result{User: user}, nil
	}

	if !cfg.Import.Enabled {
		m.log.Info("no account for provider identity, import disabled",
			zap.String("attribute", attr), zap.String("key", key))
		return nil, unknownUser(key)
	}

	return m.provision(ctx, cs, cfg.Import)
}

// provision creates a local account from the import claims. Validation
// happens before any mutation; a failed create leaves nothing behind.
// Metadata setters and the welcome mail run after the account exists and
// are best-effort. The import config is the snapshot Resolve validated;
// the source is never consulted again mid-resolution.
func (m *Manager) provision(ctx context.Context, cs claims.Set, imp config.Import) (*Result, error) {

	uid, err := cs.Get(imp.UIDAttribute)
	if err != nil {
		m.log.Error("import uid claim missing", zap.String("attribute", imp.UIDAttribute), zap.Error(err))
		return nil, provisioningFailed(err)
	}
	email, err := cs.Get(imp.EmailAttribute)
	if err != nil {
		m.log.Error("import email claim missing", zap.String("attribute", imp.EmailAttribute), zap.Error(err))
		return nil, invalidEmail(err)
	}
	displayName, _ := cs.Lookup(imp.DisplayNameAttribute)

	if !m.deps.Validator.IsValid(email) {
		return nil, invalidEmail(nil)
	}

	password, err := m.newPassword(ctx, cs)
	if err != nil {
		return nil, provisioningFailed(err)
	}

	user, err := m.deps.Users.Create(ctx, uid, password)
	if err != nil {
		m.log.Error("can't create new user", zap.String("uid", uid), zap.Error(err))
		return nil, provisioningFailed(err)
	}

	if err := user.SetEMailAddress(ctx, email); err != nil {
		m.log.Warn("can't set email on new user", zap.String("uid", uid), zap.Error(err))
	}
	if displayName != "" {
		if err := user.SetDisplayName(ctx, displayName); err != nil {
			m.log.Warn("can't set display name on new user", zap.String("uid", uid), zap.Error(err))
		}
	}

	res := &Result{User: user, Provisioned: true}
	if m.deps.Welcome != nil {
		if err := m.deps.Welcome.Send(ctx, uid, email); err != nil {
			m.log.Error("can't send new user mail",
				zap.String("uid", uid), zap.String("email", email), zap.Error(err))
			res.WelcomeMailError = err
		}
	}
	return res, nil
}

func (m *Manager) newPassword(ctx context.Context, cs claims.Set) (string, error) {
	if m.deps.PasswordSource != nil {
		if pw, ok := m.deps.PasswordSource(ctx, cs); ok {
			return pw, nil
		}
	}
	return m.deps.Random.Generate(passwordLength, CharsetAlnum)
}
