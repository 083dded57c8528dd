// Package openidconnect wires the default deployment of the SSO add-on:
// a gorm-backed user store, SMTP welcome mail and the built-in templates.
// Hosts with their own account storage or mail pipeline assemble the
// lookup.Deps themselves instead.
package openidconnect

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nimbushare/openidconnect/config"
	"github.com/nimbushare/openidconnect/l10n"
	"github.com/nimbushare/openidconnect/lookup"
	"github.com/nimbushare/openidconnect/mail"
	"github.com/nimbushare/openidconnect/persistence"
	"github.com/nimbushare/openidconnect/random"
	"github.com/nimbushare/openidconnect/ratelimit"
)

type providerConfig struct {
	cfg *config.Config
}

func (p providerConfig) LookupConfig() *config.Lookup {
	if p.cfg == nil || p.cfg.Provider.Issuer == "" {
		return nil
	}
	l := p.cfg.Provider.Lookup
	return &l
}

// ProviderConfigSource exposes the lookup configuration of the configured
// provider. An empty issuer counts as "no provider configured".
func ProviderConfigSource(cfg *config.Config) lookup.ConfigSource {
	return providerConfig{cfg: cfg}
}

// NewDefaultResolver builds a claim resolver on the default collaborators.
// The welcome mail is only wired when an SMTP address is configured;
// provisioning still works without it.
func NewDefaultResolver(cfg *config.Config, repo *persistence.Repository, urls lookup.URLBuilder, log *zap.Logger) *lookup.Manager {
	var welcome *lookup.WelcomeMailer
	if cfg.SMTPAddr != "" {
		welcome = lookup.NewWelcomeMailer(lookup.WelcomeDeps{
			Random:      random.Generator{},
			Preferences: repo,
			URLs:        urls,
			Renderer:    mail.NewTemplateSet(cfg.ProductName),
			Mailer:      mail.NewSMTPMailer(cfg.SMTPAddr, nil),
			Translator:  l10n.NewBundle("en", nil),
			ProductName: cfg.ProductName,
			FromAddress: cfg.MailFrom,
		})
	}

	return lookup.NewManager(lookup.Deps{
		Config:    ProviderConfigSource(cfg),
		Users:     repo,
		Validator: mail.NewValidator(),
		Random:    random.Generator{},
		Welcome:   welcome,
		Logger:    log,
	})
}

// NewDefaultLimiter picks the rate limiter for the deployment: redis when an
// address is configured, otherwise the in-process fallback.
func NewDefaultLimiter(redisAddr string) ratelimit.Limiter {
	if redisAddr == "" {
		return ratelimit.NewMemoryLimiter()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	return ratelimit.NewRedisLimiter(client, "")
}
