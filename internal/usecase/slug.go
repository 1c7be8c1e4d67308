package usecase

import (
	"strings"
	"unicode"
)

// "Mango Pickle (Avakaya)" -> "mango-pickle-avakaya"
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func normalizeSlug(slug, name string) string {
	if s := slugify(slug); s != "" {
		return s
	}
	return slugify(name)
}
