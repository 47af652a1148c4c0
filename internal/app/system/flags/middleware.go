package flags

import (
	"net/http"

	"github.com/gsdta/schoolapi/internal/app/system/httpx"
)

// Gate blocks a route subtree when the feature is disabled for the role.
// Installed once per feature router, after the auth middleware, so sibling
// routes in the same area cannot drift apart in their gating.
func (s *Service) Gate(role, feature string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := s.Require(r.Context(), role, feature); err != nil {
				httpx.AuthErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
