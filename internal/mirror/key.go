package mirror

import (
	"net/url"
	"strings"
)

const apiPrefix = "api/v2/"

// Key is the store key for a request path and raw query: the path relative
// to /api/v2 without surrounding slashes, plus the query with its
// parameters sorted. "/api/v2/pokemon/25/" and "pokemon/25" share a key.
func Key(path, rawQuery string) string {
	p := strings.Trim(path, "/")
	if i := strings.Index(p+"/", apiPrefix); i >= 0 {
		p = strings.Trim(p[min(i+len(apiPrefix), len(p)):], "/")
	}
	if rawQuery == "" {
		return p
	}
	if v, err := url.ParseQuery(rawQuery); err == nil {
		rawQuery = v.Encode()
	}
	return p + "?" + rawQuery
}

// KeyFromURL keys a PokeAPI reference, absolute or relative.
func KeyFromURL(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return Key(u.Path, u.RawQuery)
	}
	path, query, _ := strings.Cut(ref, "?")
	return Key(path, query)
}
