package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/policy"
)

// GetIdentity extracts the acting identity from the request context.
func GetIdentity(ctx context.Context) *policy.Identity {
	identity, _ := ctx.Value(IdentityKey).(*policy.Identity)
	return identity
}

// RequireCapability returns middleware that rejects callers without the
// named capability. Missing grants are a 403; visibility is enforced
// separately by the services.
func RequireCapability(cap policy.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if !policy.Can(identity, cap) {
				response.WriteError(w, http.StatusForbidden, "missing capability: "+string(cap))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff returns middleware that rejects non-staff callers.
func RequireStaff() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil || !identity.IsStaff {
				response.WriteError(w, http.StatusForbidden, "staff access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
