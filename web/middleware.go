// Package web runs HTTP requests inside kernel scopes, so request-scoped
// bindings live exactly as long as the request that resolved them.
package web

import (
	"errors"
	"net/http"

	"github.com/centraunit/inject"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrNoScope is returned when a request did not pass through ScopePerRequest.
var ErrNoScope = errors.New("web: request has no inject scope")

// ScopePerRequest begins a scope for every request and releases it once the
// handler returns. The scope is named after the chi request ID when
// middleware.RequestID runs first.
func ScopePerRequest(k *inject.Kernel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := middleware.GetReqID(r.Context())
			if name == "" {
				name = r.Method + " " + r.URL.Path
			}
			scope := k.BeginScope(name)
			defer func() {
				if err := scope.Release(); err != nil {
					k.Logger().Warn("request scope release failed",
						zap.String("scope", name),
						zap.Error(err),
					)
				}
			}()
			next.ServeHTTP(w, r.WithContext(inject.WithScope(r.Context(), scope)))
		})
	}
}

// Router returns a chi router that assigns request IDs, recovers panics and
// runs each request in its own scope.
func Router(k *inject.Kernel) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(ScopePerRequest(k))
	return r
}

// Scope returns the scope of r, or nil.
func Scope(r *http.Request) *inject.Scope {
	return inject.ScopeFrom(r.Context())
}

// Resolve resolves T within the scope of r.
func Resolve[T any](r *http.Request, opts ...inject.ResolveOption) (T, error) {
	scope := Scope(r)
	if scope == nil {
		var zero T
		return zero, ErrNoScope
	}
	return inject.Get[T](scope, opts...)
}
