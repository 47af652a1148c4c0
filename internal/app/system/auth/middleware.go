package auth

import (
	"context"
	"net/http"

	"github.com/gsdta/schoolapi/internal/app/system/httpx"
)

type ctxKey int

const authCtxKey ctxKey = iota

// FromContext returns the authenticated caller placed by Middleware, or nil
// on ungated routes.
func FromContext(ctx context.Context) *Context {
	ac, _ := ctx.Value(authCtxKey).(*Context)
	return ac
}

// Middleware enforces the guard for a whole route subtree and stores the
// authenticated caller in the request context. Routes with mixed
// requirements add a second Middleware via chi's With (e.g. RequireWrite on
// mutations only); Require is idempotent so stacking is safe.
func (g *Guard) Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, err := g.Require(r.Context(), r.Header.Get("Authorization"), opts)
			if err != nil {
				httpx.AuthErr(w, r, err)
				return
			}
			httpx.SetCaller(r.Context(), ac.Token.UID)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authCtxKey, ac)))
		})
	}
}
