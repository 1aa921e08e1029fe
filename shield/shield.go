// Package shield holds the HTTP middleware applied in front of the
// word2quiz API.
package shield

import "net/http"

// DefaultStack returns the middleware for the JSON API, outermost first:
// HeadToGet then SecurityHeaders.
func DefaultStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		HeadToGet,
		SecurityHeaders(DefaultHeaders()),
	}
}
