package catalog

import (
	"regexp"
	"strings"

	"pokedex/internal/pokeapi"
)

var (
	// PokeAPI flavor text carries both literal escape tokens and the real
	// control characters left over from the games' text boxes.
	escapeTokens = strings.NewReplacer(`\f`, " ", `\n`, " ", `\r`, " ")
	whitespace   = regexp.MustCompile(`\s+`)
)

// NormalizeFlavorText replaces escape tokens with spaces, collapses runs
// of whitespace and trims the result.
func NormalizeFlavorText(raw string) string {
	s := escapeTokens.Replace(raw)
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// FlavorText returns the first entry written in lang, normalized, or ""
// when there is none.
func FlavorText(entries []pokeapi.FlavorText, lang string) string {
	for _, e := range entries {
		if e.Language.Name == lang {
			return NormalizeFlavorText(e.FlavorText)
		}
	}
	return ""
}
