// Package i18n provides localized message catalogs for error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated as string to avoid an
// import cycle with the errors package).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
	matcher    language.Matcher
	matchTags  []language.Tag
)

func init() {
	RegisterCatalog(enUSCatalog)
	RegisterCatalog(ptBRCatalog)
}

// GetCatalog returns the catalog best matching the given locale.
// Falls back to en-US when the locale is unknown or unparseable.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}

	catalogsMu.RLock()
	defer catalogsMu.RUnlock()

	if c, ok := catalogs[requested]; ok {
		return c
	}

	tag, err := language.Parse(requested)
	if err == nil && matcher != nil {
		_, index, _ := matcher.Match(tag)
		if index >= 0 && index < len(matchTags) {
			if c, ok := catalogs[matchTags[index].String()]; ok {
				return c
			}
		}
	}
	return catalogs[BaseLocale]
}

// RegisterCatalog registers a catalog under its locale, replacing any
// previous registration, and rebuilds the language matcher.
func RegisterCatalog(cat *Catalog) {
	if cat == nil || strings.TrimSpace(cat.locale) == "" {
		return
	}
	catalogsMu.Lock()
	defer catalogsMu.Unlock()

	catalogs[cat.locale] = cat

	tags := make([]language.Tag, 0, len(catalogs))
	base, err := language.Parse(BaseLocale)
	if err == nil {
		tags = append(tags, base)
	}
	for locale := range catalogs {
		if locale == BaseLocale {
			continue
		}
		tag, parseErr := language.Parse(locale)
		if parseErr != nil {
			continue
		}
		tags = append(tags, tag)
	}
	matchTags = tags
	matcher = language.NewMatcher(tags)
}

// NewCatalog creates a catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are always executed even with nil metadata so that
// template variables without metadata render as empty.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}

	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}
