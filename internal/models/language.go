package models

import "fmt"

// Language is a localization of game text.
type Language string

const DefaultLanguage Language = "en"

var Languages = []Language{
	"chs", "cht", "de", "en", "es", "fr", "id", "jp", "kr", "pt", "ru", "th", "vi",
}

// ParseLanguage returns DefaultLanguage for an empty string.
func ParseLanguage(s string) (Language, error) {
	if s == "" {
		return DefaultLanguage, nil
	}
	for _, l := range Languages {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported language: %q", s)
}
