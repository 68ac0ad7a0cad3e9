package rbac

import (
	"net/http"

	"github.com/assetledger/backend/internal/apierrors"
	"github.com/assetledger/backend/internal/domain"
)

// ClaimsFromContext is implemented by the auth middleware that ran before
// this one; kept as a function value rather than a context key constant
// so internal/httpapi owns the single source of truth for the key.
type ClaimsFromContext func(r *http.Request) (domain.UserClaims, bool)

// ErrorWriter is supplied by the caller so internal/httpapi can route
// denials through its own envelope writer.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Middleware enforces the declarative route matrix and organization
// scoping (§4.4) ahead of every protected handler.
type Middleware struct {
	resolver   *Resolver
	matrix     *Matrix
	getClaims  ClaimsFromContext
	writeError ErrorWriter
}

func NewMiddleware(resolver *Resolver, matrix *Matrix, getClaims ClaimsFromContext, writeError ErrorWriter) *Middleware {
	return &Middleware{resolver: resolver, matrix: matrix, getClaims: getClaims, writeError: writeError}
}

// Enforce is the chi-compatible middleware function.
func (m *Middleware) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, ok := m.matrix.Match(r.Method, r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := m.getClaims(r)
		if !ok {
			m.writeError(w, r, apierrors.Unauthorized("authentication required"))
			return
		}

		if !claims.IsSuperAdmin() && claims.Organization == "" {
			m.writeError(w, r, apierrors.Forbidden("organization scope is required"))
			return
		}

		if route.RequiredLevel != 0 {
			if err := RequireRoleLevel(claims, route.RequiredLevel); err != nil {
				m.writeError(w, r, err)
				return
			}
		}

		if route.Permission != "" {
			if err := m.resolver.RequirePermission(r.Context(), claims, route.Permission); err != nil {
				m.writeError(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
