package lookup

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

type fakePrefs struct {
	err    error
	values map[string]string // "uid/app/key" -> value
}

func (p *fakePrefs) SetUserValue(_ context.Context, uid, app, key, value string) error {
	if p.err != nil {
		return p.err
	}
	if p.values == nil {
		p.values = make(map[string]string)
	}
	p.values[uid+"/"+app+"/"+key] = value
	return nil
}

type fakeURLs struct{}

func (fakeURLs) LinkToRouteAbsolute(route string, params map[string]string) string {
	u := "https://cloud.example.com/" + strings.ReplaceAll(route, ".", "/")
	sep := "?"
	for _, k := range []string{"userId", "token"} {
		if v, ok := params[k]; ok {
			u += sep + k + "=" + v
			sep = "&"
		}
	}
	return u
}

type fakeRenderer struct{ err error }

func (r *fakeRenderer) Render(name string, data MailData) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("[%s] Hello %s, visit %s", name, data.Username, data.URL), nil
}

type fakeMailer struct {
	err  error
	sent []*Message
}

func (m *fakeMailer) Send(_ context.Context, msg *Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(key string, args ...any) string {
	return fmt.Sprintf(key, args...)
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func newTestWelcome() (*WelcomeMailer, *fakePrefs, *fakeMailer) {
	prefs := &fakePrefs{}
	mailer := &fakeMailer{}
	w := NewWelcomeMailer(WelcomeDeps{
		Random:      &fakeRandom{},
		Preferences: prefs,
		URLs:        fakeURLs{},
		Renderer:    &fakeRenderer{},
		Mailer:      mailer,
		Translator:  fakeTranslator{},
		Clock:       fixedClock{at: time.Unix(1717171717, 0)},
		ProductName: "Nimbushare",
		FromAddress: "no-reply@example.com",
	})
	return w, prefs, mailer
}

func TestWelcomeSend(t *testing.T) {
	w, prefs, mailer := newTestWelcome()

	if err := w.Send(context.Background(), "alice", "foo@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, ok := prefs.values["alice/core/lostpassword"]
	if !ok {
		t.Fatal("reset token was not persisted")
	}
	ts, token, found := strings.Cut(stored, ":")
	if !found || ts != "1717171717" {
		t.Errorf("token value must be <unixts>:<token>, got %q", stored)
	}
	if len(token) != resetTokenLength {
		t.Errorf("expected a %d character token, got %d", resetTokenLength, len(token))
	}

	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
	msg := mailer.sent[0]
	if msg.To != "foo@example.com" || msg.ToName != "alice" {
		t.Errorf("recipient: %q/%q", msg.To, msg.ToName)
	}
	if msg.From != "no-reply@example.com" || msg.FromName != "Nimbushare" {
		t.Errorf("sender: %q/%q", msg.From, msg.FromName)
	}
	if msg.Subject != "Your Nimbushare account was created" {
		t.Errorf("subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.HTMLBody, "userId=alice") || !strings.Contains(msg.HTMLBody, "token="+token) {
		t.Errorf("html body must carry the set-password link, got %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, templateNewUser) {
		t.Errorf("html body rendered from the wrong template: %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.TextBody, templateNewUserPlain) {
		t.Errorf("text body rendered from the wrong template: %q", msg.TextBody)
	}
}

func TestWelcomeSendTokenPersistFails(t *testing.T) {
	w, prefs, mailer := newTestWelcome()
	prefs.err = fmt.Errorf("db is read-only")

	if err := w.Send(context.Background(), "alice", "foo@example.com"); err == nil {
		t.Fatal("expected error")
	}
	if len(mailer.sent) != 0 {
		t.Error("no mail may be sent when the token was not persisted")
	}
}

func TestWelcomeSendMailerFails(t *testing.T) {
	w, _, mailer := newTestWelcome()
	mailer.err = fmt.Errorf("smtp: 554 rejected")

	if err := w.Send(context.Background(), "alice", "foo@example.com"); err == nil {
		t.Fatal("expected the mailer error to propagate to the caller")
	}
}
