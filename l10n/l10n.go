// Package l10n implements the translator collaborator. Keys are the
// English source strings; untranslated keys fall through verbatim, so the
// default language needs no catalogue at all.
package l10n

import "fmt"

// Bundle translates user-facing strings for one language.
type Bundle struct {
	lang    string
	catalog map[string]string
}

// NewBundle creates a translator for lang with the given catalogue. A nil
// catalogue yields the identity translator.
func NewBundle(lang string, catalog map[string]string) *Bundle {
	return &Bundle{lang: lang, catalog: catalog}
}

func (b *Bundle) Language() string { return b.lang }

// Translate resolves key to the catalogue entry for the bundle's language
// and substitutes args printf-style.
func (b *Bundle) Translate(key string, args ...any) string {
	format := key
	if t, ok := b.catalog[key]; ok {
		format = t
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
