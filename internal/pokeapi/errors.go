package pokeapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound = errors.New("pokeapi: not found")
	ErrUpstream = errors.New("pokeapi: upstream error")
)

// StatusError is returned for any non-200 upstream response. It matches
// ErrUpstream, and ErrNotFound when the status is 404.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pokeapi: status %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("pokeapi: status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUpstream:
		return true
	}
	return false
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
