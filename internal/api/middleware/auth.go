package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/edvin/mailings/internal/api/response"
	"github.com/edvin/mailings/internal/model"
	"github.com/edvin/mailings/internal/policy"
)

type contextKey string

const IdentityKey contextKey = "identity"

// UserIDKey is used by the audit logger.
const UserIDKey contextKey = "user_id"

// Authenticator resolves a raw bearer token to a user. Satisfied by
// core.TokenService.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*model.User, error)
}

// Auth returns a middleware that validates the Authorization bearer token
// and stores the resolved identity in the request context.
func Auth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			identity := &policy.Identity{
				UserID:      user.ID,
				Email:       user.Email,
				IsStaff:     user.IsStaff,
				Groups:      user.Groups,
				Permissions: user.Permissions,
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			ctx = context.WithValue(ctx, UserIDKey, identity.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
