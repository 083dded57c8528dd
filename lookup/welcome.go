package lookup

import (
	"context"
	"fmt"
)

const (
	resetTokenLength = 21
	resetTokenApp    = "core"
	resetTokenKey    = "lostpassword"

	setPasswordRoute = "settings.users.setpassword"

	templateNewUser      = "email.new_user"
	templateNewUserPlain = "email.new_user_plain_text"
)

// WelcomeDeps are the collaborators of a WelcomeMailer. Clock may be nil to
// use the system clock.
type WelcomeDeps struct {
	Random      RandomGenerator
	Preferences PreferenceStore
	URLs        URLBuilder
	Renderer    TemplateRenderer
	Mailer      Mailer
	Translator  Translator
	Clock       Clock

	// ProductName brands the subject line, FromAddress the envelope.
	ProductName string
	FromAddress string
}

// WelcomeMailer sends the "your account was created" mail to a freshly
// provisioned user. The mail carries a password-reset link, never the
// generated password: an externally authenticated account has no use for a
// local password, and whoever does want one goes through the reset form.
type WelcomeMailer struct {
	deps WelcomeDeps
}

func NewWelcomeMailer(deps WelcomeDeps) *WelcomeMailer {
	if deps.Clock == nil {
		deps.Clock = systemClock{}
	}
	return &WelcomeMailer{deps: deps}
}

// Send issues a single-use reset token for uid, persists it and mails the
// set-password link to email. Any failing step aborts and is reported to
// the caller, who decides whether it may fail the login.
func (w *WelcomeMailer) Send(ctx context.Context, uid, email string) error {
	token, err := w.deps.Random.Generate(resetTokenLength, CharsetAlnum)
	if err != nil {
		return fmt.Errorf("welcome mail: generate token: %w", err)
	}

	value := fmt.Sprintf("%d:%s", w.deps.Clock.Now().Unix(), token)
	if err := w.deps.Preferences.SetUserValue(ctx, uid, resetTokenApp, resetTokenKey, value); err != nil {
		return fmt.Errorf("welcome mail: persist token: %w", err)
	}

	url := w.deps.URLs.LinkToRouteAbsolute(setPasswordRoute, map[string]string{
		"userId": uid,
		"token":  token,
	})
	data := MailData{Username: uid, URL: url}

	htmlBody, err := w.deps.Renderer.Render(templateNewUser, data)
	if err != nil {
		return fmt.Errorf("welcome mail: render html body: %w", err)
	}
	textBody, err := w.deps.Renderer.Render(templateNewUserPlain, data)
	if err != nil {
		return fmt.Errorf("welcome mail: render text body: %w", err)
	}

	subject := w.deps.Translator.Translate("Your %s account was created", w.deps.ProductName)

	msg := &Message{
		To:       email,
		ToName:   uid,
		From:     w.deps.FromAddress,
		FromName: w.deps.ProductName,
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
	if err := w.deps.Mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("welcome mail: send: %w", err)
	}
	return nil
}
