package mail

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/nimbushare/openidconnect/lookup"
)

const (
	newUserHTML = `<p>Hey there,</p>
<p>just letting you know that you now have a {{.Product}} account.</p>
<p>Your username: {{.Username}}</p>
<p><a href="{{.URL}}">Set your password</a></p>
`
	newUserText = `Hey there,

just letting you know that you now have a {{.Product}} account.

Your username: {{.Username}}
Set your password: {{.URL}}
`
)

type templateData struct {
	Product  string
	Username string
	URL      string
}

// TemplateSet renders the built-in mail templates. HTML bodies go through
// html/template so claim-derived values are escaped.
type TemplateSet struct {
	product string
	html    map[string]*htmltemplate.Template
	text    map[string]*texttemplate.Template
}

func NewTemplateSet(productName string) *TemplateSet {
	return &TemplateSet{
		product: productName,
		html: map[string]*htmltemplate.Template{
			"email.new_user": htmltemplate.Must(htmltemplate.New("email.new_user").Parse(newUserHTML)),
		},
		text: map[string]*texttemplate.Template{
			"email.new_user_plain_text": texttemplate.Must(texttemplate.New("email.new_user_plain_text").Parse(newUserText)),
		},
	}
}

func (t *TemplateSet) Render(name string, data lookup.MailData) (string, error) {
	td := templateData{Product: t.product, Username: data.Username, URL: data.URL}
	var b strings.Builder

	if tpl, ok := t.html[name]; ok {
		if err := tpl.Execute(&b, td); err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		return b.String(), nil
	}
	if tpl, ok := t.text[name]; ok {
		if err := tpl.Execute(&b, td); err != nil {
			return "", fmt.Errorf("render %s: %w", name, err)
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("unknown mail template %q", name)
}
