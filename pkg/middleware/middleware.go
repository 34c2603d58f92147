// Package middleware provides the HTTP middleware the API module stacks
// around its router: CORS, per-client rate limiting, request metrics and
// request logging.
package middleware

import "net/http"

// Stack is an ordered list of middleware. The first added is outermost.
type Stack []func(http.Handler) http.Handler

func (s *Stack) Use(mw func(http.Handler) http.Handler) {
	*s = append(*s, mw)
}

// Apply wraps handler with every middleware in the stack.
func (s Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		handler = s[i](handler)
	}
	return handler
}
