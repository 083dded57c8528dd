// Package mail implements the mail collaborators of the lookup core:
// address validation, the built-in templates and SMTP delivery.
package mail

import (
	"context"
	"fmt"
	"mime"
	netmail "net/mail"
	"net/smtp"
	"strings"

	"github.com/nimbushare/openidconnect/lookup"
)

// Validator checks address syntax with the stdlib address parser. A bare
// parse is too lenient for our purpose (it accepts display names and
// groups), so the parsed address must round-trip to the input.
type Validator struct{}

func NewValidator() Validator { return Validator{} }

func (Validator) IsValid(email string) bool {
	if !strings.Contains(email, "@") {
		return false
	}
	addr, err := netmail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email
}

// SMTPMailer delivers mail through a plain SMTP endpoint. Auth may be nil
// for relays that accept local connections.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
}

func NewSMTPMailer(addr string, auth smtp.Auth) *SMTPMailer {
	return &SMTPMailer{addr: addr, auth: auth}
}

const crlf = "\r\n"

func (m *SMTPMailer) Send(ctx context.Context, msg *lookup.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMIME(msg)
	if err := smtp.SendMail(m.addr, m.auth, msg.From, []string{msg.To}, []byte(body)); err != nil {
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	return nil
}

// buildMIME assembles a multipart/alternative message carrying the plain
// text and HTML bodies.
func buildMIME(msg *lookup.Message) string {
	const boundary = "=_nimbushare_mail_boundary"

	var b strings.Builder
	writeHeader := func(key, value string) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString(crlf)
	}

	writeHeader("From", formatAddress(msg.FromName, msg.From))
	writeHeader("To", formatAddress(msg.ToName, msg.To))
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	b.WriteString(crlf)

	writePart := func(contentType, content string) {
		b.WriteString("--" + boundary + crlf)
		b.WriteString("Content-Type: " + contentType + "; charset=utf-8" + crlf)
		b.WriteString(crlf)
		b.WriteString(content)
		b.WriteString(crlf)
	}
	writePart("text/plain", msg.TextBody)
	writePart("text/html", msg.HTMLBody)
	b.WriteString("--" + boundary + "--" + crlf)

	return b.String()
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return (&netmail.Address{Name: name, Address: address}).String()
}
