// Package query turns raw listing and detail parameters into validated
// values. Listing parameters are defaulted and clamped, never rejected.
package query

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 50
)

var ErrInvalidID = errors.New("invalid pokemon id")

type Sort string

const (
	SortID   Sort = "id"
	SortName Sort = "name"
	SortType Sort = "type"
)

// ListQuery is a normalized listing request. Types holds distinct,
// lowercased type names in the order they were given.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Types  []string
	Sort   Sort
}

// Offset is the index of the first candidate on Page. Pages too far out
// to index saturate at math.MaxInt, which is past any candidate list.
func (q ListQuery) Offset() int {
	if q.Limit > 0 && q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// New normalizes already-typed values, as decoded from a JSON or gRPC
// message. A zero limit means the field was absent.
func New(page, limit int, search string, types []string, sort string) ListQuery {
	if limit == 0 {
		limit = DefaultLimit
	}
	return build(page, limit, search, types, sort)
}

// Parse normalizes raw string parameters; types is comma-separated.
// An explicit "0" limit clamps to 1 rather than falling back to the default.
func Parse(page, limit, search, types, sort string) ListQuery {
	return build(
		parseInt(page, DefaultPage),
		parseInt(limit, DefaultLimit),
		search,
		strings.Split(types, ","),
		sort,
	)
}

func build(page, limit int, search string, types []string, sort string) ListQuery {
	return ListQuery{
		Page:   max(page, 1),
		Limit:  clamp(limit, 1, MaxLimit),
		Search: strings.TrimSpace(search),
		Types:  normalizeTypes(types),
		Sort:   ParseSort(sort),
	}
}

// FromValues reads page, limit, search, types and sort from a query string.
func FromValues(v url.Values) ListQuery {
	return Parse(v.Get("page"), v.Get("limit"), v.Get("search"), v.Get("types"), v.Get("sort"))
}

func ParseSort(s string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortName:
		return SortName
	case SortType:
		return SortType
	default:
		return SortID
	}
}

// ParseID validates a detail identifier: it must be a positive integer.
func ParseID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidID
	}
	return n, nil
}

func normalizeTypes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// parseInt reads the leading integer of s ("3abc" is 3, "2.9" is 2) and
// returns def when there is none.
func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return def
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
