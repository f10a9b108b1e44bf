// Package i18n selects the message printer used for CLI output.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is the fallback language
var DefaultLang = language.English

// SupportedLangs are the languages we support
var SupportedLangs = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(SupportedLangs)

func init() {
	// Verdict lines are the ones operators read under pressure.
	_ = message.SetString(language.German, "Change accepted.\n", "Änderung bestätigt.\n")
	_ = message.SetString(language.German, "Change NOT accepted, revert it.\n", "Änderung NICHT bestätigt, bitte zurücksetzen.\n")
	_ = message.SetString(language.German, "Acceptance disabled, nothing to confirm.\n", "Bestätigung deaktiviert, nichts zu tun.\n")
}

// MatchLanguage returns the best matching language for the given tags
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	_, idx, _ := matcher.Match(tags...)
	return SupportedLangs[idx]
}

// NewPrinter returns a message printer for the given language
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// NewCLIPrinter returns a printer for the system's locale (from env vars)
func NewCLIPrinter() *message.Printer {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	return message.NewPrinter(localeTag(lang))
}

// localeTag maps a POSIX locale such as "de_DE.UTF-8" onto a supported tag.
func localeTag(lang string) language.Tag {
	if lang == "" || lang == "C" || lang == "POSIX" {
		return DefaultLang
	}
	if i := strings.Index(lang, "."); i != -1 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")

	tag, err := language.Parse(lang)
	if err != nil {
		return MatchLanguage(lang)
	}
	_, idx, _ := matcher.Match(tag)
	return SupportedLangs[idx]
}
