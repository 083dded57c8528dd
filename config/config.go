// Package config loads the service configuration and holds the resolved
// per-provider lookup settings.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SearchMode selects how the configured search attribute is matched against
// local accounts.
type SearchMode string

const (
	// SearchByEmail matches the attribute value against account email
	// addresses. Email is not unique in the account store.
	SearchByEmail SearchMode = "email"
	// SearchByUserID matches the attribute value against account IDs.
	SearchByUserID SearchMode = "userid"
)

// DefaultSearchAttribute is used when searching by email and no attribute
// was configured.
const DefaultSearchAttribute = "email"

// Config is the full service configuration, loaded from the environment.
type Config struct {
	DBType          string `mapstructure:"DB_TYPE"` // sqlite, postgres, mysql
	DSN             string `mapstructure:"DSN"`
	SkipAutoMigrate bool   `mapstructure:"SKIP_AUTO_MIGRATE"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	Port            int    `mapstructure:"PORT"`
	BaseURL         string `mapstructure:"BASE_URL"`
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	ProductName     string `mapstructure:"PRODUCT_NAME"`
	MailFrom        string `mapstructure:"MAIL_FROM"`
	SMTPAddr        string `mapstructure:"SMTP_ADDR"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`

	Provider Provider `mapstructure:"PROVIDER"`
}

// Provider is the resolved configuration of the active identity provider.
// It is read-only once resolved for a login attempt.
type Provider struct {
	Issuer       string `mapstructure:"issuer"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`

	// DisplayName labels the alternative login button on the login page.
	DisplayName string `mapstructure:"display_name"`
	// AutoRedirect sends unauthenticated visitors of the bare login page
	// straight to the provider.
	AutoRedirect bool `mapstructure:"auto_redirect"`

	Lookup Lookup `mapstructure:"lookup"`
}

// Lookup configures how provider claims are mapped to local accounts.
type Lookup struct {
	Mode            SearchMode `mapstructure:"mode"`
	SearchAttribute string     `mapstructure:"search_attribute"`
	Import          Import     `mapstructure:"import"`
}

// Import configures just-in-time provisioning of unknown users.
type Import struct {
	Enabled              bool   `mapstructure:"enabled"`
	UIDAttribute         string `mapstructure:"uid_attribute"`
	EmailAttribute       string `mapstructure:"email_attribute"`
	DisplayNameAttribute string `mapstructure:"display_name_attribute"`
}

// ByEmail reports whether accounts are matched by email address. Email is
// the default mode; anything other than "userid" falls back to it.
func (l Lookup) ByEmail() bool {
	return l.Mode != SearchByUserID
}

// Attribute returns the claim name used as the lookup key.
func (l Lookup) Attribute() string {
	if l.SearchAttribute != "" {
		return l.SearchAttribute
	}
	return DefaultSearchAttribute
}

// Validate checks that the lookup settings are internally consistent.
func (l Lookup) Validate() error {
	switch l.Mode {
	case "", SearchByEmail:
	case SearchByUserID:
		if l.SearchAttribute == "" {
			return fmt.Errorf("lookup mode %q requires an explicit search attribute", l.Mode)
		}
	default:
		return fmt.Errorf("unknown lookup mode %q", l.Mode)
	}
	// The display name attribute stays optional: a provisioned account is
	// usable without one.
	if l.Import.Enabled {
		if l.Import.UIDAttribute == "" || l.Import.EmailAttribute == "" {
			return fmt.Errorf("import requires uid and email attributes")
		}
	}
	return nil
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PORT", 8080)
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "openidconnect.db")
	viper.SetDefault("SKIP_AUTO_MIGRATE", false)
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("PRODUCT_NAME", "Nimbushare")
	viper.SetDefault("MAIL_FROM", "no-reply@localhost")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
