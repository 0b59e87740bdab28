// Package middleware provides the HTTP middleware stack: panic recovery,
// request IDs, CORS, body-size limits, request logging, and the two
// authentication schemes (dashboard JWT and widget project key).
package middleware

import "net/http"

// Middleware wraps an http.Handler with additional behavior. Used for
// concerns applied outside the Gin engine (CORS, body-size limits).
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
