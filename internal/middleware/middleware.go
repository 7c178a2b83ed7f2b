// file: internal/middleware/middleware.go
package middleware

import "net/http"

// Middleware is a standard HTTP middleware function
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares in declaration order: the first listed runs
// outermost.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
