// Package cors computes the per-request CORS decision and serves preflights.
//
// In dev the policy echoes localhost, loopback and private-LAN origins so
// the UI can run anywhere on the local network. In prod only the configured
// allow-list is echoed; everything else gets no Access-Control-Allow-Origin
// header and the browser blocks the response.
package cors

import (
	"net/http"
	"regexp"
	"strings"
)

// lanOriginRe matches plain-HTTP origins in the RFC1918 private ranges.
var lanOriginRe = regexp.MustCompile(`^http://(192\.168\.|10\.|172\.(1[6-9]|2[0-9]|3[01])\.)`)

// Policy resolves allowed origins for one environment.
type Policy struct {
	dev     bool
	allowed map[string]struct{}
}

// New creates a Policy. env is "dev" or "prod"; allowedOrigins is the single
// configured production allow-list shared by every route.
func New(env string, allowedOrigins []string) *Policy {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Policy{dev: env != "prod", allowed: allowed}
}

// ResolveOrigin returns the origin to echo in Access-Control-Allow-Origin,
// or "" when the origin is not allowed.
func (p *Policy) ResolveOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if p.dev {
		if strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") ||
			lanOriginRe.MatchString(origin) {
			return origin
		}
		return ""
	}
	if _, ok := p.allowed[origin]; ok {
		return origin
	}
	return ""
}

// Middleware emits CORS headers for the given verbs and answers OPTIONS
// preflights with 204 and no body, before any auth runs. Mounted once per
// feature router.
func (p *Policy) Middleware(methods ...string) func(http.Handler) http.Handler {
	allowMethods := strings.Join(append(methods, http.MethodOptions), ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Vary", "Origin, Access-Control-Request-Headers, Access-Control-Request-Method")
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if allow := p.ResolveOrigin(r.Header.Get("Origin")); allow != "" {
				h.Set("Access-Control-Allow-Origin", allow)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
