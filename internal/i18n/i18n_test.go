package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		accept   string
		expected language.Tag
	}{
		{"en-US,en;q=0.9", language.English},
		{"de-DE,de;q=0.9", language.German},
		{"fr-FR", language.English}, // Fallback
		{"", language.English},      // Empty
	}

	for _, tt := range tests {
		got := MatchLanguage(tt.accept)
		base, _ := got.Base()
		exp, _ := tt.expected.Base()
		assert.Equal(t, exp, base, "Accept: %s", tt.accept)
	}
}

func TestLocaleTag(t *testing.T) {
	tests := []struct {
		locale   string
		expected language.Tag
	}{
		{"de_DE.UTF-8", language.German},
		{"en_US.UTF-8", language.English},
		{"C", language.English},
		{"", language.English},
	}

	for _, tt := range tests {
		base, _ := localeTag(tt.locale).Base()
		exp, _ := tt.expected.Base()
		assert.Equal(t, exp, base, "locale: %s", tt.locale)
	}
}

func TestGermanVerdict(t *testing.T) {
	p := NewPrinter(language.German)
	assert.Equal(t, "Änderung bestätigt.\n", p.Sprintf("Change accepted.\n"))

	en := NewPrinter(language.English)
	assert.Equal(t, "Change accepted.\n", en.Sprintf("Change accepted.\n"))
}

func TestNewCLIPrinter(t *testing.T) {
	t.Setenv("LC_ALL", "de_DE.UTF-8")
	p := NewCLIPrinter()
	assert.NotNil(t, p)
	assert.Equal(t, "Änderung bestätigt.\n", p.Sprintf("Change accepted.\n"))
}
