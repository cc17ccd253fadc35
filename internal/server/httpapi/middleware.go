package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prestobr/authd/internal/common"
	"github.com/prestobr/authd/internal/server/auth"
)

const adminRole = "ADMIN"

// principalMiddleware resolves the request credential to a principal and
// injects it into the request context. A bearer token is tried first, then
// the X-Api-Key header. Requests with no credential, or with an invalid
// one, proceed as anonymous; the route gates decide whether that is enough.
func (s *HTTPServer) principalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.codec.PrincipalFromHeader(r.Header.Get(common.AuthorizationHeaderName), s.now()); ok {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
			return
		}

		if raw := r.Header.Get(common.APIKeyHeaderName); raw != "" {
			if p, err := s.keys.VerifyKey(r.Context(), raw); err == nil {
				next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects anonymous requests.
func (s *HTTPServer) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole rejects anonymous requests and authenticated principals
// missing the role.
func (s *HTTPServer) requireRole(role string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.PrincipalFrom(r.Context())
			if !ok {
				writeErrorMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !p.HasRole(role) {
				writeErrorMessage(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
