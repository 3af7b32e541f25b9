package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// supportedLocales lists the catalogs registered by this package. English is
// first so unmatched locales fall back to it.
var supportedLocales = []language.Tag{
	language.English,
	language.MustParse("pt-BR"),
}

var localeMatcher = language.NewMatcher(supportedLocales)

// PrinterFor returns a message printer for the closest supported locale.
// Empty or unknown locales resolve to English.
func PrinterFor(locale string) *message.Printer {
	tag, _ := language.MatchStrings(localeMatcher, locale)
	return message.NewPrinter(tag)
}
