// Package i18n translates interface strings and validation messages.
//
// Locale files are nested JSON embedded in the binary and flattened to dot
// keys at load time: {"auth": {"login": "Sign in"}} becomes "auth.login".
//
//	cat, _ := i18n.Load(i18n.EmbeddedLocales)
//	l := cat.Localizer("es")
//	l.T("nav.bookings") // "Reservas"
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

// EmbeddedLocales holds locales/<lang>.json for every supported language.
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS

// SupportedLanguages lists the language codes with a locale file.
var SupportedLanguages = []string{"en", "es"}

// DefaultLanguage is used when nothing better is known.
const DefaultLanguage = "en"

// Catalog holds every language's flattened translations. It is read-only
// after Load and safe for concurrent use.
type Catalog struct {
	translations map[string]map[string]string
}

// Load reads <lang>.json from fsys (rooted at the locales directory, or at
// its parent when it contains a locales/ directory).
func Load(fsys fs.FS) (*Catalog, error) {
	if sub, err := fs.Sub(fsys, "locales"); err == nil {
		if _, statErr := fs.Stat(sub, DefaultLanguage+".json"); statErr == nil {
			fsys = sub
		}
	}

	c := &Catalog{translations: make(map[string]map[string]string, len(SupportedLanguages))}
	for _, lang := range SupportedLanguages {
		name := lang + ".json"
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read translation file %s: %w", name, err)
		}

		var nested map[string]any
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("parse translation file %s: %w", name, err)
		}

		flat := make(map[string]string)
		flattenMap("", nested, flat)
		c.translations[lang] = flat
	}
	return c, nil
}

// Keys returns the number of keys loaded for lang.
func (c *Catalog) Keys(lang string) int {
	return len(c.translations[lang])
}

// Localizer returns a translator for lang, falling back to DefaultLanguage
// for unsupported codes.
func (c *Catalog) Localizer(lang string) *Localizer {
	if !IsSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{catalog: c, lang: lang}
}

// Localizer translates keys for one language.
type Localizer struct {
	catalog *Catalog
	lang    string
}

// Lang is the language code this localizer serves.
func (l *Localizer) Lang() string { return l.lang }

// T returns the translation of key. Missing keys fall back to English and
// then to the key itself.
func (l *Localizer) T(key string) string {
	if msg, ok := l.catalog.translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := l.catalog.translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams replaces {{name}} placeholders in the translation of key.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage picks the first supported language of an Accept-Language
// header such as "es-MX,es;q=0.9,en;q=0.8".
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		lang = strings.ToLower(strings.Split(lang, "-")[0])
		if IsSupported(lang) {
			return lang
		}
	}
	return DefaultLanguage
}

// IsSupported reports whether lang has a locale file.
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
