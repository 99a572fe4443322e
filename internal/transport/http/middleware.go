package http

import (
	"net/http"
	"strings"

	"accounts/internal/pagination"
)

// BasicAuthentication resolves the caller from basic credentials. Any failure
// silently leaves the identity unset; this gate never rejects a request.
func (h *Handler) BasicAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, password, ok := r.BasicAuth()
		if ok {
			u, err := h.users.FindByEmail(r.Context(), email)
			if err == nil && !u.Inactive && h.passwords.Verify(password, u.Password) {
				r = r.WithContext(withIdentity(r.Context(), Identity{ID: u.ID}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// TokenAuthentication resolves the caller from a bearer token. Absent,
// malformed and expired tokens are non-fatal at this layer.
func (h *Handler) TokenAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if strings.HasPrefix(authorization, "Bearer ") {
			token := strings.TrimPrefix(authorization, "Bearer ")
			if id, err := h.tokens.Verify(r.Context(), token); err == nil {
				r = r.WithContext(withIdentity(r.Context(), Identity{ID: id}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Pagination normalizes page and size query parameters into the context.
func Pagination(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		p := pagination.Normalize(q.Get("page"), q.Get("size"))
		next.ServeHTTP(w, r.WithContext(withPagination(r.Context(), p)))
	})
}
