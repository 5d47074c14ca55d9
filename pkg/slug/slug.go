package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name. Latin letters with
// common diacritics are transliterated to ASCII so ailment names like
// "Ménière's Disease" resolve to the same slug the directory stores.
//
// Examples:
//   - "Hay Fever" → "hay-fever"
//   - "Ménière's Disease" → "meniere-s-disease"
//   - "Cold   & Flu!" → "cold-flu"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	replacer := strings.NewReplacer(
		"à", "a", "á", "a", "â", "a", "ä", "a",
		"è", "e", "é", "e", "ê", "e", "ë", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i",
		"ò", "o", "ó", "o", "ô", "o", "ö", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u",
		"ç", "c", "ñ", "n",
	)
	s = replacer.Replace(s)

	// Replace any non-alphanumeric run with a hyphen.
	s = slugRegexp.ReplaceAllString(s, "-")

	// Trim leading and trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}
