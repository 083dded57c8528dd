package lookup

import "fmt"

// Kind classifies a login failure for the caller. Every failed resolution
// surfaces as exactly one kind; the HTTP layer maps kinds to responses.
type Kind string

const (
	// KindAmbiguousAccount means more than one local account shares the
	// email the provider asserted. Picking one silently would conflate
	// accounts, so the login is refused.
	KindAmbiguousAccount Kind = "ambiguous_account"
	// KindUnknownUser means no local account matched and provisioning is
	// disabled.
	KindUnknownUser Kind = "unknown_user"
	// KindInvalidEmail means the provider asserted a syntactically invalid
	// email for a user that would have been provisioned.
	KindInvalidEmail Kind = "invalid_email"
	// KindProvisioningFailed means account creation failed. The cause is
	// for logs; the message stays generic so store internals never reach
	// the end user.
	KindProvisioningFailed Kind = "provisioning_failed"
)

// LoginError is a failed account resolution. Message is safe to show to the
// person attempting to log in; Cause carries the underlying error for logs.
type LoginError struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Cause }

// ConfigError signals that the provider configuration could not be resolved
// or is inconsistent. It is an operator problem, not a login failure: the
// hint is meant for the admin log, not the login page.
type ConfigError struct {
	Hint  string
	Cause error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Hint, e.Cause)
	}
	return e.Hint
}

func (e *ConfigError) Unwrap() error { return e.Cause }

func ambiguousAccount(email string) *LoginError {
	return &LoginError{
		Kind:    KindAmbiguousAccount,
		Message: fmt.Sprintf("%s is not unique.", email),
	}
}

func unknownUser(key string) *LoginError {
	return &LoginError{
		Kind:    KindUnknownUser,
		Message: fmt.Sprintf("User %s is not known.", key),
	}
}

func invalidEmail(cause error) *LoginError {
	return &LoginError{
		Kind:    KindInvalidEmail,
		Message: "Invalid mail address.",
		Cause:   cause,
	}
}

func provisioningFailed(cause error) *LoginError {
	return &LoginError{
		Kind:    KindProvisioningFailed,
		Message: "Can't import new user from openid provider.",
		Cause:   cause,
	}
}
