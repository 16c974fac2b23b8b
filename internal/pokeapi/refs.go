package pokeapi

import (
	"strconv"
	"strings"
)

// CanonicalBaseURL is the prefix of every reference PokeAPI hands out.
const CanonicalBaseURL = "https://pokeapi.co/api/v2"

// IDSegment returns the last non-empty path segment of a reference URL,
// e.g. "25" for "https://pokeapi.co/api/v2/pokemon/25/".
func IDSegment(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// IDFromURL extracts the numeric id encoded in a reference URL.
func IDFromURL(ref string) (int, bool) {
	n, err := strconv.Atoi(IDSegment(ref))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
