package lookup

import (
	"context"
	"time"

	"github.com/nimbushare/openidconnect/claims"
	"github.com/nimbushare/openidconnect/config"
)

// User is an opaque handle to a local account owned by the user store. The
// resolver never holds account state of its own; it only obtains handles
// and hands them back to the caller.
type User interface {
	UID() string
	DisplayName() string
	EMailAddress() string

	// SetEMailAddress and SetDisplayName update account metadata after
	// provisioning. They are best-effort from the resolver's point of
	// view: a failure leaves a usable account behind.
	SetEMailAddress(ctx context.Context, email string) error
	SetDisplayName(ctx context.Context, name string) error
}

// UserStore is the host's account storage.
type UserStore interface {
	// GetByEmail returns every account with the given email address.
	// Email is not unique in the store.
	GetByEmail(ctx context.Context, email string) ([]User, error)
	// Get returns the account with the given id, or nil when none exists.
	Get(ctx context.Context, uid string) (User, error)
	// Create creates an account. The store enforces uid uniqueness; a
	// racing duplicate create surfaces as an error here.
	Create(ctx context.Context, uid, password string) (User, error)
}

// ConfigSource resolves the lookup configuration of the active provider.
// A nil result means the provider is not configured at all.
type ConfigSource interface {
	LookupConfig() *config.Lookup
}

// MailValidator checks syntactic well-formedness of an email address.
type MailValidator interface {
	IsValid(email string) bool
}

// Character sets for RandomGenerator, matching what the generated secrets
// are used for: passwords get the full human-readable set, reset tokens the
// alphanumeric one.
const (
	CharsetDigits = "0123456789"
	CharsetLower  = "abcdefghijklmnopqrstuvwxyz"
	CharsetUpper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	CharsetAlnum  = CharsetDigits + CharsetLower + CharsetUpper
)

// RandomGenerator produces cryptographically random strings.
type RandomGenerator interface {
	Generate(length int, charset string) (string, error)
}

// PreferenceStore persists per-user key/value settings in the host
// application, namespaced by app.
type PreferenceStore interface {
	SetUserValue(ctx context.Context, uid, app, key, value string) error
}

// URLBuilder builds absolute URLs into the host application by route name.
type URLBuilder interface {
	LinkToRouteAbsolute(route string, params map[string]string) string
}

// Message is an outbound mail.
type Message struct {
	To       string
	ToName   string
	From     string
	FromName string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers mail. Transport, retries and queueing are its concern.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// MailData is the substitution data for welcome mail templates.
type MailData struct {
	Username string
	URL      string
}

// TemplateRenderer renders a named mail template with substitution data.
type TemplateRenderer interface {
	Render(name string, data MailData) (string, error)
}

// Translator localizes user-facing strings. Arguments are substituted
// printf-style.
type Translator interface {
	Translate(key string, args ...any) string
}

// Clock abstracts time for the reset-token timestamp.
type Clock interface {
	Now() time.Time
}

// PasswordSource lets a deployment supply the initial password for a
// provisioned account instead of a generated one. Returning false falls
// back to the generator.
type PasswordSource func(ctx context.Context, cs claims.Set) (string, bool)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
