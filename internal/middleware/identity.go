package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/rpay/imagegate/internal/quota"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const callerContextKey contextKey = "caller"

// Caller is the resolved identity and tier of one inbound request.
type Caller struct {
	Identity string
	Tier     quota.Tier
}

// Identity resolves each request's caller from the X-API-Key header against
// the privileged allow-list. Resolution never rejects a request: an absent
// or unrecognized key just means standard tier, identified by client IP.
type Identity struct {
	allowList map[string]struct{}
}

func NewIdentity(apiKeys []string) *Identity {
	allow := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			allow[k] = struct{}{}
		}
	}
	return &Identity{allowList: allow}
}

// Resolve wraps an HTTP handler, storing the resolved Caller in the request
// context for downstream handlers.
func (m *Identity) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := Caller{Identity: clientIP(r), Tier: quota.TierStandard}
		if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
			if _, ok := m.allowList[key]; ok {
				caller = Caller{Identity: key, Tier: quota.TierPrivileged}
			}
		}
		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFromContext retrieves the caller resolved by Identity.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(Caller)
	return caller, ok
}

// clientIP is the peer's network address. Forwarding headers like
// X-Forwarded-For are deliberately ignored: they are caller-supplied, and a
// quota identity anyone can rotate per request is no identity at all.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
