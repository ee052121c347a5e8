package display

import "strings"

// KeyLoading is shown until the first payload has been normalized.
const KeyLoading = "LOADING"

const defaultLanguage = "en"

var translations = map[string]map[string]string{
	"en": {KeyLoading: "Loading …"},
	"de": {KeyLoading: "Lade …"},
	"fr": {KeyLoading: "Chargement …"},
	"nl": {KeyLoading: "Laden …"},
	"es": {KeyLoading: "Cargando …"},
	"sv": {KeyLoading: "Laddar …"},
}

// Translate looks up key for lang ("de", "de-DE", "de_AT"), falling back to
// English and finally to the key itself.
func Translate(lang, key string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		lang = lang[:idx]
	}
	if table, ok := translations[lang]; ok {
		if value, ok := table[key]; ok {
			return value
		}
	}
	if value, ok := translations[defaultLanguage][key]; ok {
		return value
	}
	return key
}
